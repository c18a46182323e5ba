package rpc

import (
	"context"
	"errors"
	"log"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/marcosbot/marcos/internal/phraser"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "marcos.v1.Phraser"

// #region engine

// Engine is the generation backend served over gRPC.
type Engine interface {
	StorePhrase(ctx context.Context, chainID int64, text string) error
	GeneratePhrase(ctx context.Context, chainID int64) (string, error)
	ExtendPhrase(ctx context.Context, chainID int64, phrase string, before, after bool) (string, error)
	GenerateHaiku(ctx context.Context, chainID int64, seed string) ([]string, error)
	TransitionsFrom(ctx context.Context, chainID int64, word string) ([]phraser.Transition, error)
	TransitionsTo(ctx context.Context, chainID int64, word string) ([]phraser.Transition, error)
}

// PhraserServer is the server API of the Phraser service. Requests are
// structpb.Struct objects carrying chain_id plus per-method fields.
type PhraserServer interface {
	StorePhrase(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GeneratePhrase(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	ExtendPhrase(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	GenerateHaiku(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	TransitionsFrom(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	TransitionsTo(context.Context, *structpb.Struct) (*structpb.ListValue, error)
}

// #endregion engine

// #region server

// Server adapts an Engine to PhraserServer.
type Server struct {
	engine Engine
}

var _ PhraserServer = (*Server)(nil)

// NewServer returns a server backed by engine.
func NewServer(engine Engine) *Server {
	return &Server{engine: engine}
}

// Register attaches the Phraser service for engine to s.
func Register(s *grpc.Server, engine Engine) {
	s.RegisterService(&ServiceDesc, NewServer(engine))
}

func (s *Server) StorePhrase(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	req, err := parse(in, "text")
	if err != nil {
		return nil, err
	}
	if err := s.engine.StorePhrase(ctx, req.chainID, req.str("text")); err != nil {
		return nil, toStatus("store phrase", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) GeneratePhrase(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	req, err := parse(in)
	if err != nil {
		return nil, err
	}
	text, err := s.engine.GeneratePhrase(ctx, req.chainID)
	if err != nil {
		return nil, toStatus("generate phrase", err)
	}
	return wrapperspb.String(text), nil
}

func (s *Server) ExtendPhrase(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	req, err := parse(in, "phrase")
	if err != nil {
		return nil, err
	}
	text, err := s.engine.ExtendPhrase(ctx, req.chainID, req.str("phrase"), req.boolean("before"), req.boolean("after"))
	if err != nil {
		return nil, toStatus("extend phrase", err)
	}
	return wrapperspb.String(text), nil
}

func (s *Server) GenerateHaiku(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	req, err := parse(in)
	if err != nil {
		return nil, err
	}
	lines, err := s.engine.GenerateHaiku(ctx, req.chainID, req.str("seed"))
	if err != nil {
		return nil, toStatus("generate haiku", err)
	}
	values := make([]*structpb.Value, len(lines))
	for i, l := range lines {
		values[i] = structpb.NewStringValue(l)
	}
	return &structpb.ListValue{Values: values}, nil
}

func (s *Server) TransitionsFrom(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	return s.transitions(ctx, in, "transitions from", s.engine.TransitionsFrom)
}

func (s *Server) TransitionsTo(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	return s.transitions(ctx, in, "transitions to", s.engine.TransitionsTo)
}

func (s *Server) transitions(ctx context.Context, in *structpb.Struct, op string,
	list func(context.Context, int64, string) ([]phraser.Transition, error)) (*structpb.ListValue, error) {
	req, err := parse(in, "word")
	if err != nil {
		return nil, err
	}
	ts, err := list(ctx, req.chainID, req.str("word"))
	if err != nil {
		return nil, toStatus(op, err)
	}
	values := make([]*structpb.Value, len(ts))
	for i, t := range ts {
		values[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"word":        structpb.NewStringValue(t.Word),
			"probability": structpb.NewNumberValue(t.Probability),
		}})
	}
	return &structpb.ListValue{Values: values}, nil
}

// #endregion server

// #region request

type request struct {
	chainID int64
	fields  map[string]*structpb.Value
}

// parse checks chain_id and the required string fields.
func parse(in *structpb.Struct, required ...string) (request, error) {
	fields := in.GetFields()
	v, ok := fields["chain_id"]
	if !ok {
		return request{}, status.Error(codes.InvalidArgument, "chain_id is required")
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return request{}, status.Error(codes.InvalidArgument, "chain_id must be an integer")
	}
	for _, name := range required {
		if _, ok := fields[name].GetKind().(*structpb.Value_StringValue); !ok {
			return request{}, status.Errorf(codes.InvalidArgument, "%s must be a string", name)
		}
	}
	return request{chainID: int64(n.NumberValue), fields: fields}, nil
}

func (r request) str(name string) string   { return r.fields[name].GetStringValue() }
func (r request) boolean(name string) bool { return r.fields[name].GetBoolValue() }

// toStatus maps engine errors onto gRPC codes.
func toStatus(op string, err error) error {
	switch {
	case errors.Is(err, phraser.ErrImpossibleHaiku):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	log.Printf("[RPC] %s: %v", op, err)
	return status.Errorf(codes.Internal, "%s: %v", op, err)
}

// #endregion request

// #region service-desc

func unary[Resp proto.Message](method string, call func(PhraserServer, context.Context, *structpb.Struct) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PhraserServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PhraserServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the Phraser service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PhraserServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StorePhrase", PhraserServer.StorePhrase),
		unary("GeneratePhrase", PhraserServer.GeneratePhrase),
		unary("ExtendPhrase", PhraserServer.ExtendPhrase),
		unary("GenerateHaiku", PhraserServer.GenerateHaiku),
		unary("TransitionsFrom", PhraserServer.TransitionsFrom),
		unary("TransitionsTo", PhraserServer.TransitionsTo),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marcos/v1/phraser.proto",
}

// #endregion service-desc
