package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// AnalysisServiceName is the fully qualified gRPC service name.
const AnalysisServiceName = "gsfd.analysis.v1.Analysis"

const (
	listRecordsMethod = "/" + AnalysisServiceName + "/ListRecords"
	aggregateMethod   = "/" + AnalysisServiceName + "/Aggregate"
)

// AnalysisServer answers queries over a loaded corpus. Requests and responses
// use the protobuf well-known Struct and ListValue messages.
type AnalysisServer interface {
	// ListRecords accepts an optional "group" filter and returns one struct per Record.
	ListRecords(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
	// Aggregate requires a "layout" name and returns one struct per aggregate row.
	Aggregate(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
}

// RegisterAnalysisServer attaches srv to a gRPC server.
func RegisterAnalysisServer(s grpc.ServiceRegistrar, srv AnalysisServer) {
	s.RegisterService(&analysisServiceDesc, srv)
}

var analysisServiceDesc = grpc.ServiceDesc{
	ServiceName: AnalysisServiceName,
	HandlerType: (*AnalysisServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListRecords", Handler: listRecordsHandler},
		{MethodName: "Aggregate", Handler: aggregateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gsfd/analysis/v1/analysis.proto",
}

func listRecordsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalysisServer).ListRecords(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listRecordsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AnalysisServer).ListRecords(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func aggregateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalysisServer).Aggregate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: aggregateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AnalysisServer).Aggregate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// AnalysisClient calls a remote AnalysisServer.
type AnalysisClient struct {
	cc grpc.ClientConnInterface
}

// NewAnalysisClient wraps an established connection.
func NewAnalysisClient(cc grpc.ClientConnInterface) *AnalysisClient {
	return &AnalysisClient{cc: cc}
}

// ListRecords calls Analysis/ListRecords.
func (c *AnalysisClient) ListRecords(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listRecordsMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Aggregate calls Analysis/Aggregate.
func (c *AnalysisClient) Aggregate(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, aggregateMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
