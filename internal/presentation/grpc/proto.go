package grpc

// proto.go defines the gRPC server interface for hids.v1.ThreatService.
// Messages are plain Go structs carried by the JSON codec in codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "hids.v1.ThreatService"

// Full method names, as seen by interceptors.
const (
	MethodAnalyzeRecord = "/" + ServiceName + "/AnalyzeRecord"
	MethodAnalyzeBatch  = "/" + ServiceName + "/AnalyzeBatch"
	MethodGetVerdict    = "/" + ServiceName + "/GetVerdict"
	MethodListVerdicts  = "/" + ServiceName + "/ListVerdicts"
	MethodModelInfo     = "/" + ServiceName + "/ModelInfo"
)

// ThreatServiceServer is the server API for ThreatService.
type ThreatServiceServer interface {
	AnalyzeRecord(context.Context, *AnalyzeRecordRequest) (*AnalyzeRecordResponse, error)
	AnalyzeBatch(context.Context, *AnalyzeBatchRequest) (*AnalyzeBatchResponse, error)
	GetVerdict(context.Context, *GetVerdictRequest) (*GetVerdictResponse, error)
	ListVerdicts(context.Context, *ListVerdictsRequest) (*ListVerdictsResponse, error)
	ModelInfo(context.Context, *ModelInfoRequest) (*ModelInfoResponse, error)
	mustEmbedUnimplementedThreatServiceServer()
}

// UnimplementedThreatServiceServer provides forward-compatible default implementations.
type UnimplementedThreatServiceServer struct{}

func (UnimplementedThreatServiceServer) AnalyzeRecord(context.Context, *AnalyzeRecordRequest) (*AnalyzeRecordResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AnalyzeRecord not implemented")
}
func (UnimplementedThreatServiceServer) AnalyzeBatch(context.Context, *AnalyzeBatchRequest) (*AnalyzeBatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AnalyzeBatch not implemented")
}
func (UnimplementedThreatServiceServer) GetVerdict(context.Context, *GetVerdictRequest) (*GetVerdictResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetVerdict not implemented")
}
func (UnimplementedThreatServiceServer) ListVerdicts(context.Context, *ListVerdictsRequest) (*ListVerdictsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListVerdicts not implemented")
}
func (UnimplementedThreatServiceServer) ModelInfo(context.Context, *ModelInfoRequest) (*ModelInfoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ModelInfo not implemented")
}
func (UnimplementedThreatServiceServer) mustEmbedUnimplementedThreatServiceServer() {}

// RegisterThreatServiceServer registers the ThreatServiceServer with the gRPC server.
func RegisterThreatServiceServer(s grpclib.ServiceRegistrar, srv ThreatServiceServer) {
	s.RegisterService(&_ThreatService_serviceDesc, srv)
}

var _ThreatService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ThreatServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AnalyzeRecord", Handler: _ThreatService_AnalyzeRecord_Handler},
		{MethodName: "AnalyzeBatch", Handler: _ThreatService_AnalyzeBatch_Handler},
		{MethodName: "GetVerdict", Handler: _ThreatService_GetVerdict_Handler},
		{MethodName: "ListVerdicts", Handler: _ThreatService_ListVerdicts_Handler},
		{MethodName: "ModelInfo", Handler: _ThreatService_ModelInfo_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _ThreatService_AnalyzeRecord_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(AnalyzeRecordRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ThreatServiceServer).AnalyzeRecord(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodAnalyzeRecord}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ThreatServiceServer).AnalyzeRecord(ctx, req.(*AnalyzeRecordRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _ThreatService_AnalyzeBatch_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(AnalyzeBatchRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ThreatServiceServer).AnalyzeBatch(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodAnalyzeBatch}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ThreatServiceServer).AnalyzeBatch(ctx, req.(*AnalyzeBatchRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _ThreatService_GetVerdict_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetVerdictRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ThreatServiceServer).GetVerdict(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetVerdict}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ThreatServiceServer).GetVerdict(ctx, req.(*GetVerdictRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _ThreatService_ListVerdicts_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ListVerdictsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ThreatServiceServer).ListVerdicts(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodListVerdicts}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ThreatServiceServer).ListVerdicts(ctx, req.(*ListVerdictsRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _ThreatService_ModelInfo_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ModelInfoRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ThreatServiceServer).ModelInfo(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodModelInfo}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ThreatServiceServer).ModelInfo(ctx, req.(*ModelInfoRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// ThreatServiceClient is the client API for ThreatService.
type ThreatServiceClient interface {
	AnalyzeRecord(ctx context.Context, in *AnalyzeRecordRequest, opts ...grpclib.CallOption) (*AnalyzeRecordResponse, error)
	AnalyzeBatch(ctx context.Context, in *AnalyzeBatchRequest, opts ...grpclib.CallOption) (*AnalyzeBatchResponse, error)
	GetVerdict(ctx context.Context, in *GetVerdictRequest, opts ...grpclib.CallOption) (*GetVerdictResponse, error)
	ListVerdicts(ctx context.Context, in *ListVerdictsRequest, opts ...grpclib.CallOption) (*ListVerdictsResponse, error)
	ModelInfo(ctx context.Context, in *ModelInfoRequest, opts ...grpclib.CallOption) (*ModelInfoResponse, error)
}

type threatServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewThreatServiceClient creates a client that speaks the JSON codec.
func NewThreatServiceClient(cc grpclib.ClientConnInterface) ThreatServiceClient {
	return &threatServiceClient{cc: cc}
}

func (c *threatServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpclib.CallOption) error {
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *threatServiceClient) AnalyzeRecord(ctx context.Context, in *AnalyzeRecordRequest, opts ...grpclib.CallOption) (*AnalyzeRecordResponse, error) {
	out := new(AnalyzeRecordResponse)
	if err := c.invoke(ctx, MethodAnalyzeRecord, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *threatServiceClient) AnalyzeBatch(ctx context.Context, in *AnalyzeBatchRequest, opts ...grpclib.CallOption) (*AnalyzeBatchResponse, error) {
	out := new(AnalyzeBatchResponse)
	if err := c.invoke(ctx, MethodAnalyzeBatch, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *threatServiceClient) GetVerdict(ctx context.Context, in *GetVerdictRequest, opts ...grpclib.CallOption) (*GetVerdictResponse, error) {
	out := new(GetVerdictResponse)
	if err := c.invoke(ctx, MethodGetVerdict, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *threatServiceClient) ListVerdicts(ctx context.Context, in *ListVerdictsRequest, opts ...grpclib.CallOption) (*ListVerdictsResponse, error) {
	out := new(ListVerdictsResponse)
	if err := c.invoke(ctx, MethodListVerdicts, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *threatServiceClient) ModelInfo(ctx context.Context, in *ModelInfoRequest, opts ...grpclib.CallOption) (*ModelInfoResponse, error) {
	out := new(ModelInfoResponse)
	if err := c.invoke(ctx, MethodModelInfo, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
