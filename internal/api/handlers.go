package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"occupancy/internal/calendar"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	calendarServiceName = "occupancy.v1.CalendarService"
	getLayoutMethod     = "/" + calendarServiceName + "/GetLayout"
)

// CalendarServiceServer is the gRPC calendar API. Requests and responses
// are google.protobuf.Struct values carrying the same fields as the HTTP
// layout endpoint.
type CalendarServiceServer interface {
	GetLayout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var calendarServiceDesc = grpc.ServiceDesc{
	ServiceName: calendarServiceName,
	HandlerType: (*CalendarServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetLayout", Handler: getLayoutHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "occupancy/v1/calendar.proto",
}

func RegisterCalendarServiceServer(s grpc.ServiceRegistrar, srv CalendarServiceServer) {
	s.RegisterService(&calendarServiceDesc, srv)
}

func getLayoutHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalendarServiceServer).GetLayout(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getLayoutMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalendarServiceServer).GetLayout(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type CalendarService struct {
	svc *calendar.Service
}

func NewCalendarService(svc *calendar.Service) *CalendarService {
	return &CalendarService{svc: svc}
}

// GetLayout accepts month, from, to, room, day_width and selected.
func (s *CalendarService) GetLayout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	lr, err := layoutRequestFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	snap, err := lr.load(ctx, s.svc)
	if err != nil {
		return nil, grpcError(err)
	}

	data, err := json.Marshal(newSnapshotResponse(snap))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode layout: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode layout: %v", err)
	}
	return out, nil
}

func layoutRequestFromStruct(req *structpb.Struct) (layoutRequest, error) {
	fields := req.GetFields()
	str := func(key string) string {
		if v, ok := fields[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}

	lr := layoutRequest{
		Month:    str("month"),
		From:     str("from"),
		To:       str("to"),
		Room:     str("room"),
		Selected: str("selected"),
	}
	if v, ok := fields["day_width"]; ok {
		n := v.GetNumberValue()
		if n != float64(int(n)) {
			return lr, errors.New("day_width must be an integer")
		}
		lr.DayWidth = int(n)
	}
	err := lr.check()
	return lr, err
}

func grpcError(err error) error {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return status.Error(codes.InvalidArgument, err.Error())
	case http.StatusNotFound:
		return status.Error(codes.NotFound, err.Error())
	case http.StatusBadGateway:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
