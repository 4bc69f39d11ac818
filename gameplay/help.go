package gameplay

import (
	"context"

	"github.com/jarvisgally/gamecmd/command"
	"github.com/rodaine/table"
)

// Help lists the commands the caller may run.
type Help struct {
	registry *command.Registry
}

func NewHelp(r *command.Registry) *Help {
	return &Help{registry: r}
}

func (h *Help) Commands() []*command.Descriptor {
	return []*command.Descriptor{
		{
			Name:        "help",
			Description: "List the commands you can use",
			ClientOnly:  true,
			Run:         h.help,
		},
	}
}

func (h *Help) help(ctx context.Context) (bool, error) {
	p, err := caller(ctx)
	if err != nil {
		return false, err
	}
	tbl := table.New("Command", "Level", "Description").WithWriter(p.Output())
	for _, d := range h.registry.Descriptors() {
		if !p.Level().Allows(d.Level) {
			continue
		}
		tbl.AddRow(d.Usage(), d.Level, d.Description)
	}
	tbl.Print()
	return true, nil
}
