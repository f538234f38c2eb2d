// Package v1alpha1 serves the equipment.v1alpha1.TotalsService gRPC API.
// Requests and responses are google.protobuf.Struct values so the API can
// carry the same JSON shapes the event decoder and set documents use.
package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "equipment.v1alpha1.TotalsService"

// Full method names
const (
	TotalsServiceCreateSetFullMethodName   = "/" + ServiceName + "/CreateSet"
	TotalsServiceDispatchFullMethodName    = "/" + ServiceName + "/Dispatch"
	TotalsServiceGetTotalsFullMethodName   = "/" + ServiceName + "/GetTotals"
	TotalsServiceRecalculateFullMethodName = "/" + ServiceName + "/Recalculate"
	TotalsServiceSaveSetFullMethodName     = "/" + ServiceName + "/SaveSet"
)

// TotalsServiceServer is the server API for TotalsService
type TotalsServiceServer interface {
	// CreateSet registers a set document: {document}
	CreateSet(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Dispatch applies one mutation event: {set_id, type, payload}
	Dispatch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetTotals returns a set with its totals: {set_id}
	GetTotals(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Recalculate recomputes every totals figure of a set: {set_id}
	Recalculate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// SaveSet persists a set: {set_id}
	SaveSet(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterTotalsServiceServer registers srv on s
func RegisterTotalsServiceServer(s grpc.ServiceRegistrar, srv TotalsServiceServer) {
	s.RegisterService(&TotalsServiceDesc, srv)
}

// TotalsServiceDesc is the grpc.ServiceDesc for TotalsService
var TotalsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TotalsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSet", Handler: unaryHandler(TotalsServiceCreateSetFullMethodName, TotalsServiceServer.CreateSet)},
		{MethodName: "Dispatch", Handler: unaryHandler(TotalsServiceDispatchFullMethodName, TotalsServiceServer.Dispatch)},
		{MethodName: "GetTotals", Handler: unaryHandler(TotalsServiceGetTotalsFullMethodName, TotalsServiceServer.GetTotals)},
		{MethodName: "Recalculate", Handler: unaryHandler(TotalsServiceRecalculateFullMethodName, TotalsServiceServer.Recalculate)},
		{MethodName: "SaveSet", Handler: unaryHandler(TotalsServiceSaveSetFullMethodName, TotalsServiceServer.SaveSet)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "equipment/v1alpha1/totals.proto",
}

type unaryMethod func(TotalsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TotalsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TotalsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// TotalsServiceClient is the client API for TotalsService
type TotalsServiceClient interface {
	CreateSet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Dispatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetTotals(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Recalculate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SaveSet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type totalsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTotalsServiceClient creates a client on cc
func NewTotalsServiceClient(cc grpc.ClientConnInterface) TotalsServiceClient {
	return &totalsServiceClient{cc: cc}
}

func (c *totalsServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *totalsServiceClient) CreateSet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TotalsServiceCreateSetFullMethodName, in, opts)
}

func (c *totalsServiceClient) Dispatch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TotalsServiceDispatchFullMethodName, in, opts)
}

func (c *totalsServiceClient) GetTotals(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TotalsServiceGetTotalsFullMethodName, in, opts)
}

func (c *totalsServiceClient) Recalculate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TotalsServiceRecalculateFullMethodName, in, opts)
}

func (c *totalsServiceClient) SaveSet(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, TotalsServiceSaveSetFullMethodName, in, opts)
}
