package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The control service uses protobuf well-known types as messages, so no
// generated code is needed:
//
//	service Control {
//	  rpc Execute(google.protobuf.Struct) returns (google.protobuf.BoolValue);
//	  rpc ListCommands(google.protobuf.Empty) returns (google.protobuf.ListValue);
//	}
//
// Execute requests carry the fields "player", "command" and "args".
const (
	serviceName           = "gamecmd.Control"
	executeMethod         = "/gamecmd.Control/Execute"
	listCommandsMethod    = "/gamecmd.Control/ListCommands"
	authorizationMetadata = "authorization"
	requestPlayerField    = "player"
	requestCommandField   = "command"
	requestArgumentsField = "args"
)

// ControlServer is the server API for the Control service.
type ControlServer interface {
	Execute(context.Context, *structpb.Struct) (*wrapperspb.BoolValue, error)
	ListCommands(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

func RegisterControlServer(s *grpc.Server, srv ControlServer) {
	s.RegisterService(&controlServiceDesc, srv)
}

func executeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: executeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).Execute(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listCommandsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).ListCommands(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listCommandsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ControlServer).ListCommands(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var controlServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
		{MethodName: "ListCommands", Handler: listCommandsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gamecmd/control",
}
