// Package grpcapi serves the strategy simulator over gRPC. Messages are
// google.protobuf.Struct so no generated code is needed.
package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/montyhall/internal/host"
	"github.com/xtding233/montyhall/internal/monty"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "montyhall.v1.Simulator"

const (
	methodSimulate = "/" + ServiceName + "/Simulate"
	methodHistory  = "/" + ServiceName + "/History"
)

// SimulatorServer is the server API for montyhall.v1.Simulator.
type SimulatorServer interface {
	// Simulate takes {trials?, strategy?} and returns one result record.
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// History returns {results: [...]} newest first.
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Simulate", Handler: simulateHandler},
		{MethodName: "History", Handler: historyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "montyhall/v1/simulator.proto",
}

func simulateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServer).Simulate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSimulate}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServer).Simulate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func historyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SimulatorServer).History(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodHistory}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SimulatorServer).History(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Service implements SimulatorServer on top of a Host.
type Service struct {
	host   *host.Host
	logger *log.Logger
}

func NewService(h *host.Host, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{host: h, logger: logger.WithPrefix("grpc")}
}

func (s *Service) Simulate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	settings := s.host.Settings()
	trials := settings.DefaultTrials
	strategy := settings.DefaultStrategy

	fields := req.GetFields()
	if v, ok := fields["trials"]; ok {
		n := v.GetNumberValue()
		if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum || n != math.Trunc(n) {
			return nil, status.Error(codes.InvalidArgument, "trials must be an integer")
		}
		trials = int(n)
	}
	if v, ok := fields["strategy"]; ok {
		st, err := monty.ParseStrategy(v.GetStringValue())
		if err != nil {
			return nil, toStatus(err)
		}
		strategy = st
	}

	rec, err := s.host.Simulate(ctx, trials, strategy)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := structpb.NewStruct(recordFields(rec))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}

func (s *Service) History(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	recs := s.host.History()
	list := make([]any, 0, len(recs))
	for _, rec := range recs {
		list = append(list, recordFields(rec))
	}
	out, err := structpb.NewStruct(map[string]any{"results": list})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode history: %v", err)
	}
	return out, nil
}

func recordFields(rec host.Record) map[string]any {
	return map[string]any{
		"id":             rec.ID,
		"at":             rec.At.Format(time.RFC3339Nano),
		"trials":         rec.Trials,
		"strategy":       string(rec.Strategy),
		"wins":           rec.Wins,
		"win_percentage": rec.WinPercentage,
	}
}

func recordFromStruct(st *structpb.Struct) (host.Record, error) {
	f := st.GetFields()
	at, err := time.Parse(time.RFC3339Nano, f["at"].GetStringValue())
	if err != nil {
		return host.Record{}, fmt.Errorf("decode record time: %w", err)
	}
	return host.Record{
		ID: f["id"].GetStringValue(),
		At: at,
		SimulationResult: monty.SimulationResult{
			Trials:        int(f["trials"].GetNumberValue()),
			Strategy:      monty.Strategy(f["strategy"].GetStringValue()),
			Wins:          int(f["wins"].GetNumberValue()),
			WinPercentage: f["win_percentage"].GetNumberValue(),
		},
	}, nil
}

// toStatus maps domain errors to gRPC status codes.
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, monty.ErrInvalidInput), errors.Is(err, monty.ErrInvalidMove):
		code = codes.InvalidArgument
	case errors.Is(err, monty.ErrWrongPhase):
		code = codes.FailedPrecondition
	case errors.Is(err, host.ErrSessionNotFound):
		code = codes.NotFound
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return status.Error(code, err.Error())
}
