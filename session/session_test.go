package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doorService struct{ doors int }

func TestProvideAndResolve(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := New(WithLogger(logger))
	id := uuid.New()

	require.NoError(t, s.Provide(id, &doorService{doors: 3}))
	assert.True(t, errors.Is(s.Provide(id, &doorService{}), ErrServiceExists))
	assert.True(t, errors.Is(s.Provide(uuid.New(), nil), ErrNilService))

	svc, ok := Resolve[*doorService](s, id)
	require.True(t, ok)
	assert.Equal(t, 3, svc.doors)
	assert.Empty(t, hook.Entries)

	_, ok = Resolve[string](s, id)
	assert.False(t, ok)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLookupMissing(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := New(WithLogger(logger))
	svc, ok := s.Lookup(uuid.New())
	assert.False(t, ok)
	assert.Nil(t, svc)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, s.ID(), hook.Entries[0].Data["session"])
}

func TestRemove(t *testing.T) {
	logger, _ := test.NewNullLogger()
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	s := New(WithLogger(logger), WithID(id))
	assert.Equal(t, id, s.ID())

	svcID := uuid.New()
	require.NoError(t, s.Provide(svcID, "printer"))
	assert.Equal(t, []uuid.UUID{svcID}, s.IDs())
	require.NoError(t, s.Remove(svcID))
	assert.True(t, errors.Is(s.Remove(svcID), ErrServiceMissing))
	_, ok := s.Lookup(svcID)
	assert.False(t, ok)
}
