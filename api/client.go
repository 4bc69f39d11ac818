package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a remote control API.
type Client struct {
	conn  grpc.ClientConnInterface
	token string
}

func NewClient(conn grpc.ClientConnInterface, token string) *Client {
	return &Client{conn: conn, token: token}
}

func (c *Client) withToken(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, authorizationMetadata, "Bearer "+c.token)
}

// Execute runs name with args as the given player.
func (c *Client) Execute(ctx context.Context, player, name string, args ...string) (bool, error) {
	values := make([]interface{}, len(args))
	for i, a := range args {
		values[i] = a
	}
	req, err := structpb.NewStruct(map[string]interface{}{
		requestPlayerField:    player,
		requestCommandField:   name,
		requestArgumentsField: values,
	})
	if err != nil {
		return false, err
	}
	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(c.withToken(ctx), executeMethod, req, out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) ListCommands(ctx context.Context) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(c.withToken(ctx), listCommandsMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		names = append(names, v.GetStringValue())
	}
	return names, nil
}
