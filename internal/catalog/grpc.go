package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/watchfire-io/labwatch/internal/models"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "labwatch.catalog.v1.Catalog"

// Full method names.
const (
	MethodRegisterLog = "/" + ServiceName + "/RegisterLog"
	MethodReportPanic = "/" + ServiceName + "/ReportPanic"
	MethodIsRunActive = "/" + ServiceName + "/IsRunActive"
	MethodActiveRuns  = "/" + ServiceName + "/ActiveRuns"
)

// Request and response fields. Requests are structpb.Struct values so the
// service needs no generated code.
const (
	fieldRunID       = "run_id"
	fieldFilename    = "filename"
	fieldSignature   = "signature"
	fieldRuns        = "runs"
	fieldSystem      = "system"
	fieldPanicIgnore = "panic_ignore"
)

// ============================================================================
// Service Definition
// ============================================================================

type unaryFunc func(ctx context.Context, backend Catalog, req *structpb.Struct) (proto.Message, error)

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Catalog)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterLog", Handler: unaryHandler(MethodRegisterLog, handleRegisterLog)},
		{MethodName: "ReportPanic", Handler: unaryHandler(MethodReportPanic, handleReportPanic)},
		{MethodName: "IsRunActive", Handler: unaryHandler(MethodIsRunActive, handleIsRunActive)},
		{MethodName: "ActiveRuns", Handler: unaryHandler(MethodActiveRuns, handleActiveRuns)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labwatch/catalog/v1/catalog.proto",
}

// RegisterCatalogServer exposes backend as the catalog service on s.
func RegisterCatalogServer(s grpc.ServiceRegistrar, backend Catalog) {
	s.RegisterService(&serviceDesc, backend)
}

func unaryHandler(method string, fn unaryFunc) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			out, err := fn(ctx, srv.(Catalog), req.(*structpb.Struct))
			if err != nil {
				return nil, toStatus(err)
			}
			return out, nil
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, handler)
	}
}

func handleRegisterLog(ctx context.Context, backend Catalog, req *structpb.Struct) (proto.Message, error) {
	runID, err := runIDField(req)
	if err != nil {
		return nil, err
	}
	filename, err := stringField(req, fieldFilename)
	if err != nil {
		return nil, err
	}
	if err := backend.RegisterLog(ctx, runID, filename); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func handleReportPanic(ctx context.Context, backend Catalog, req *structpb.Struct) (proto.Message, error) {
	runID, err := runIDField(req)
	if err != nil {
		return nil, err
	}
	signature, err := stringField(req, fieldSignature)
	if err != nil {
		return nil, err
	}
	if err := backend.ReportPanic(ctx, runID, signature); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

func handleIsRunActive(ctx context.Context, backend Catalog, req *structpb.Struct) (proto.Message, error) {
	runID, err := runIDField(req)
	if err != nil {
		return nil, err
	}
	active, err := backend.IsRunActive(ctx, runID)
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bool(active), nil
}

func handleActiveRuns(ctx context.Context, backend Catalog, _ *structpb.Struct) (proto.Message, error) {
	runs, err := backend.ActiveRuns(ctx)
	if err != nil {
		return nil, err
	}
	values := make([]*structpb.Value, 0, len(runs))
	for _, r := range runs {
		values = append(values, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldRunID:       structpb.NewNumberValue(float64(r.RunID)),
			fieldSystem:      structpb.NewStringValue(r.System),
			fieldPanicIgnore: structpb.NewBoolValue(r.PanicIgnore),
		}}))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldRuns: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}, nil
}

// ============================================================================
// Message Helpers
// ============================================================================

func runIDField(s *structpb.Struct) (int64, error) {
	v, ok := s.GetFields()[fieldRunID]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", fieldRunID)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be an integer", fieldRunID)
	}
	return int64(n.NumberValue), nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", name)
	}
	return str.StringValue, nil
}

func runRequest(runID int64, extra map[string]string) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldRunID: structpb.NewNumberValue(float64(runID)),
	}
	for k, v := range extra {
		fields[k] = structpb.NewStringValue(v)
	}
	return &structpb.Struct{Fields: fields}
}

func runsFromStruct(s *structpb.Struct) ([]models.Run, error) {
	values := s.GetFields()[fieldRuns].GetListValue().GetValues()
	runs := make([]models.Run, 0, len(values))
	for i, v := range values {
		item := v.GetStructValue()
		if item == nil {
			return nil, fmt.Errorf("runs[%d] is not an object", i)
		}
		runID, err := runIDField(item)
		if err != nil {
			return nil, fmt.Errorf("runs[%d]: %w", i, err)
		}
		runs = append(runs, models.Run{
			RunID:       runID,
			System:      item.GetFields()[fieldSystem].GetStringValue(),
			PanicIgnore: item.GetFields()[fieldPanicIgnore].GetBoolValue(),
		})
	}
	return runs, nil
}

// toStatus maps catalog errors onto gRPC status codes.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrPanicAlreadyReported):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus maps gRPC status codes back onto catalog errors.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrRunNotFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrPanicAlreadyReported, st.Message())
	}
	return err
}
