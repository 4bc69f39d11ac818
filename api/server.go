package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"

	"github.com/jarvisgally/gamecmd/config"
	"github.com/jarvisgally/gamecmd/console"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlAPI lets remote operators list and run commands as a player.
type ControlAPI struct {
	dispatcher *console.Dispatcher
	log        logrus.FieldLogger
}

func NewControlAPI(d *console.Dispatcher, log logrus.FieldLogger) *ControlAPI {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ControlAPI{dispatcher: d, log: log}
}

// Execute reports command failures as false, only malformed requests and
// unknown players are errors.
func (s *ControlAPI) Execute(ctx context.Context, req *structpb.Struct) (*wrapperspb.BoolValue, error) {
	fields := req.GetFields()
	playerName := fields[requestPlayerField].GetStringValue()
	name := fields[requestCommandField].GetStringValue()
	if playerName == "" || name == "" {
		return nil, status.Error(codes.InvalidArgument, "player and command are required")
	}
	var args []string
	for i, v := range fields[requestArgumentsField].GetListValue().GetValues() {
		arg, err := argument(v)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "argument %d: %v", i, err)
		}
		args = append(args, arg)
	}
	s.log.WithFields(logrus.Fields{
		"player":  playerName,
		"command": name,
	}).Info("API: Execute")

	ok, err := s.dispatcher.DispatchAs(ctx, playerName, name, args, console.OriginRemote)
	if errors.Is(err, console.ErrUnknownPlayer) {
		return nil, status.Errorf(codes.NotFound, "unknown player %v", playerName)
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bool(ok), nil
}

// argument accepts strings, numbers and booleans; whole numbers are written
// without a fraction so integer arguments validate.
func argument(v *structpb.Value) (string, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return strconv.FormatInt(int64(n), 10), nil
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(kind.BoolValue), nil
	default:
		return "", fmt.Errorf("unsupported value %T", kind)
	}
}

func (s *ControlAPI) ListCommands(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	s.log.Info("API: ListCommands")
	names := s.dispatcher.Registry.ListNames()
	values := make([]*structpb.Value, len(names))
	for i, name := range names {
		values[i] = structpb.NewStringValue(name)
	}
	return &structpb.ListValue{Values: values}, nil
}

// RunControlAPI serves the control API on cfg.Listen until ctx is done.
func RunControlAPI(ctx context.Context, d *console.Dispatcher, cfg config.API, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	g, err := newGuard(cfg, log)
	if err != nil {
		return err
	}
	server := grpc.NewServer(grpc.UnaryInterceptor(g.unary))
	defer server.Stop()
	RegisterControlServer(server, NewControlAPI(d, log))
	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("control api failed to listen on %v: %w", cfg.Listen, err)
	}
	defer listener.Close()
	log.Infof("control api service is listening on %v", cfg.Listen)
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(listener)
	}()
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return nil
	}
}
