// Package control is the command line side of the control API: it connects
// to a running server and lists or runs commands there.
package control

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jarvisgally/gamecmd/api"
	"github.com/rodaine/table"
	"google.golang.org/grpc"
)

// RemoteCommand calls the control API of a running server.
type RemoteCommand struct {
	// Method to call
	//   list
	//   exec
	method *string

	// Target address of the control API
	host *string

	// Operator token
	token *string

	// Player to run commands as
	player *string

	timeout *time.Duration
}

func NewRemoteCommand(fs *flag.FlagSet) *RemoteCommand {
	return &RemoteCommand{
		method:  fs.String("remote", "", "Call the control API of a running server: list, exec"),
		host:    fs.String("host", "127.0.0.1:11081", "Address of the control API"),
		token:   fs.String("token", "", "Operator token for the control API"),
		player:  fs.String("as", "", "Player to run remote commands as"),
		timeout: fs.Duration("timeout", 10*time.Second, "Timeout of remote calls"),
	}
}

func (c *RemoteCommand) Description() []string {
	return []string{
		"Call the control API",
		"The following methods are currently supported:",
		"\tlist, show the registered commands",
		"\texec, run a command as a player",
		"Examples:",
		"gamecmd -remote list --host=127.0.0.1:11081",
		"gamecmd -remote exec --host=127.0.0.1:11081 --as=admin give bob 100",
	}
}

// Requested reports whether the remote flag was given.
func (c *RemoteCommand) Requested() bool {
	return *c.method != ""
}

// Execute runs the requested method, args are the remaining command line
// arguments.
func (c *RemoteCommand) Execute(ctx context.Context, args []string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, *c.timeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, *c.host, grpc.WithInsecure())
	if err != nil {
		return fmt.Errorf("can not connect to %v: %w", *c.host, err)
	}
	defer conn.Close()
	client := api.NewClient(conn, *c.token)

	switch strings.ToLower(*c.method) {
	case "list":
		return c.list(ctx, client, w)
	case "exec":
		return c.exec(ctx, client, args, w)
	default:
		return fmt.Errorf("unknown remote method %v", *c.method)
	}
}

func (c *RemoteCommand) list(ctx context.Context, client *api.Client, w io.Writer) error {
	names, err := client.ListCommands(ctx)
	if err != nil {
		return err
	}
	tbl := table.New("Command").WithWriter(w)
	for _, name := range names {
		tbl.AddRow(name)
	}
	tbl.Print()
	return nil
}

func (c *RemoteCommand) exec(ctx context.Context, client *api.Client, args []string, w io.Writer) error {
	if *c.player == "" {
		return fmt.Errorf("exec needs a player, set --as")
	}
	if len(args) == 0 {
		return fmt.Errorf("exec needs a command")
	}
	ok, err := client.Execute(ctx, *c.player, args[0], args[1:]...)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("command %v failed", args[0])
	}
	fmt.Fprintln(w, "Done")
	return nil
}
