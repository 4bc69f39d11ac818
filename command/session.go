package command

import (
	"github.com/google/uuid"
	"github.com/jarvisgally/gamecmd/session"
)

// RegistryID identifies the command registry among a session's services.
var RegistryID = uuid.MustParse("8f0b2c3e-6a41-4d7c-9a55-2b1e0c7d4f19")

// Attach provides r to s under RegistryID.
func Attach(s *session.Session, r *Registry) error {
	return s.Provide(RegistryID, r)
}

// FromSession resolves the session's registry. A missing registry is logged
// by the session and returned as nil.
func FromSession(s *session.Session) (*Registry, bool) {
	return session.Resolve[*Registry](s, RegistryID)
}
