package seflowv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "seflow.v1.SeflowService"

const (
	SeflowService_Rebalance_FullMethodName             = "/seflow.v1.SeflowService/Rebalance"
	SeflowService_PreviewSplit_FullMethodName          = "/seflow.v1.SeflowService/PreviewSplit"
	SeflowService_SubmitSplit_FullMethodName           = "/seflow.v1.SeflowService/SubmitSplit"
	SeflowService_GetDashboard_FullMethodName          = "/seflow.v1.SeflowService/GetDashboard"
	SeflowService_ListTransactions_FullMethodName      = "/seflow.v1.SeflowService/ListTransactions"
	SeflowService_GetContractStats_FullMethodName      = "/seflow.v1.SeflowService/GetContractStats"
	SeflowService_GetLPPosition_FullMethodName         = "/seflow.v1.SeflowService/GetLPPosition"
	SeflowService_CompoundYield_FullMethodName         = "/seflow.v1.SeflowService/CompoundYield"
	SeflowService_EnableAutoCompound_FullMethodName    = "/seflow.v1.SeflowService/EnableAutoCompound"
	SeflowService_DisableAutoCompound_FullMethodName   = "/seflow.v1.SeflowService/DisableAutoCompound"
	SeflowService_GetAutoCompoundStatus_FullMethodName = "/seflow.v1.SeflowService/GetAutoCompoundStatus"
)

// SeflowServiceServer is the server API for SeflowService
type SeflowServiceServer interface {
	Rebalance(context.Context, *RebalanceRequest) (*RebalanceResponse, error)
	PreviewSplit(context.Context, *PreviewSplitRequest) (*PreviewSplitResponse, error)
	SubmitSplit(context.Context, *SubmitSplitRequest) (*SubmitSplitResponse, error)
	GetDashboard(context.Context, *GetDashboardRequest) (*GetDashboardResponse, error)
	ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error)
	GetContractStats(context.Context, *GetContractStatsRequest) (*GetContractStatsResponse, error)
	GetLPPosition(context.Context, *GetLPPositionRequest) (*GetLPPositionResponse, error)
	CompoundYield(context.Context, *CompoundYieldRequest) (*CompoundYieldResponse, error)
	EnableAutoCompound(context.Context, *EnableAutoCompoundRequest) (*AutoCompoundStatus, error)
	DisableAutoCompound(context.Context, *DisableAutoCompoundRequest) (*AutoCompoundStatus, error)
	GetAutoCompoundStatus(context.Context, *GetAutoCompoundStatusRequest) (*AutoCompoundStatus, error)
}

// UnimplementedSeflowServiceServer returns Unimplemented for every method
type UnimplementedSeflowServiceServer struct{}

func (UnimplementedSeflowServiceServer) Rebalance(context.Context, *RebalanceRequest) (*RebalanceResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Rebalance not implemented")
}
func (UnimplementedSeflowServiceServer) PreviewSplit(context.Context, *PreviewSplitRequest) (*PreviewSplitResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PreviewSplit not implemented")
}
func (UnimplementedSeflowServiceServer) SubmitSplit(context.Context, *SubmitSplitRequest) (*SubmitSplitResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitSplit not implemented")
}
func (UnimplementedSeflowServiceServer) GetDashboard(context.Context, *GetDashboardRequest) (*GetDashboardResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDashboard not implemented")
}
func (UnimplementedSeflowServiceServer) ListTransactions(context.Context, *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTransactions not implemented")
}
func (UnimplementedSeflowServiceServer) GetContractStats(context.Context, *GetContractStatsRequest) (*GetContractStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetContractStats not implemented")
}
func (UnimplementedSeflowServiceServer) GetLPPosition(context.Context, *GetLPPositionRequest) (*GetLPPositionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetLPPosition not implemented")
}
func (UnimplementedSeflowServiceServer) CompoundYield(context.Context, *CompoundYieldRequest) (*CompoundYieldResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CompoundYield not implemented")
}
func (UnimplementedSeflowServiceServer) EnableAutoCompound(context.Context, *EnableAutoCompoundRequest) (*AutoCompoundStatus, error) {
	return nil, status.Error(codes.Unimplemented, "method EnableAutoCompound not implemented")
}
func (UnimplementedSeflowServiceServer) DisableAutoCompound(context.Context, *DisableAutoCompoundRequest) (*AutoCompoundStatus, error) {
	return nil, status.Error(codes.Unimplemented, "method DisableAutoCompound not implemented")
}
func (UnimplementedSeflowServiceServer) GetAutoCompoundStatus(context.Context, *GetAutoCompoundStatusRequest) (*AutoCompoundStatus, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAutoCompoundStatus not implemented")
}

// RegisterSeflowServiceServer registers srv on s
func RegisterSeflowServiceServer(s grpc.ServiceRegistrar, srv SeflowServiceServer) {
	s.RegisterService(&SeflowService_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to a grpc.MethodHandler
func unaryHandler[Req, Resp any](fullMethod string, call func(SeflowServiceServer, context.Context, *Req) (*Resp, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SeflowServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SeflowServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SeflowService_ServiceDesc is the grpc.ServiceDesc for SeflowService
var SeflowService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SeflowServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Rebalance",
			Handler:    unaryHandler(SeflowService_Rebalance_FullMethodName, SeflowServiceServer.Rebalance),
		},
		{
			MethodName: "PreviewSplit",
			Handler:    unaryHandler(SeflowService_PreviewSplit_FullMethodName, SeflowServiceServer.PreviewSplit),
		},
		{
			MethodName: "SubmitSplit",
			Handler:    unaryHandler(SeflowService_SubmitSplit_FullMethodName, SeflowServiceServer.SubmitSplit),
		},
		{
			MethodName: "GetDashboard",
			Handler:    unaryHandler(SeflowService_GetDashboard_FullMethodName, SeflowServiceServer.GetDashboard),
		},
		{
			MethodName: "ListTransactions",
			Handler:    unaryHandler(SeflowService_ListTransactions_FullMethodName, SeflowServiceServer.ListTransactions),
		},
		{
			MethodName: "GetContractStats",
			Handler:    unaryHandler(SeflowService_GetContractStats_FullMethodName, SeflowServiceServer.GetContractStats),
		},
		{
			MethodName: "GetLPPosition",
			Handler:    unaryHandler(SeflowService_GetLPPosition_FullMethodName, SeflowServiceServer.GetLPPosition),
		},
		{
			MethodName: "CompoundYield",
			Handler:    unaryHandler(SeflowService_CompoundYield_FullMethodName, SeflowServiceServer.CompoundYield),
		},
		{
			MethodName: "EnableAutoCompound",
			Handler:    unaryHandler(SeflowService_EnableAutoCompound_FullMethodName, SeflowServiceServer.EnableAutoCompound),
		},
		{
			MethodName: "DisableAutoCompound",
			Handler:    unaryHandler(SeflowService_DisableAutoCompound_FullMethodName, SeflowServiceServer.DisableAutoCompound),
		},
		{
			MethodName: "GetAutoCompoundStatus",
			Handler:    unaryHandler(SeflowService_GetAutoCompoundStatus_FullMethodName, SeflowServiceServer.GetAutoCompoundStatus),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "seflow/v1/seflow.proto",
}

// SeflowServiceClient is the client API for SeflowService
type SeflowServiceClient interface {
	Rebalance(ctx context.Context, in *RebalanceRequest, opts ...grpc.CallOption) (*RebalanceResponse, error)
	PreviewSplit(ctx context.Context, in *PreviewSplitRequest, opts ...grpc.CallOption) (*PreviewSplitResponse, error)
	SubmitSplit(ctx context.Context, in *SubmitSplitRequest, opts ...grpc.CallOption) (*SubmitSplitResponse, error)
	GetDashboard(ctx context.Context, in *GetDashboardRequest, opts ...grpc.CallOption) (*GetDashboardResponse, error)
	ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error)
	GetContractStats(ctx context.Context, in *GetContractStatsRequest, opts ...grpc.CallOption) (*GetContractStatsResponse, error)
	GetLPPosition(ctx context.Context, in *GetLPPositionRequest, opts ...grpc.CallOption) (*GetLPPositionResponse, error)
	CompoundYield(ctx context.Context, in *CompoundYieldRequest, opts ...grpc.CallOption) (*CompoundYieldResponse, error)
	EnableAutoCompound(ctx context.Context, in *EnableAutoCompoundRequest, opts ...grpc.CallOption) (*AutoCompoundStatus, error)
	DisableAutoCompound(ctx context.Context, in *DisableAutoCompoundRequest, opts ...grpc.CallOption) (*AutoCompoundStatus, error)
	GetAutoCompoundStatus(ctx context.Context, in *GetAutoCompoundStatusRequest, opts ...grpc.CallOption) (*AutoCompoundStatus, error)
}

type seflowServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSeflowServiceClient creates a client that speaks the JSON codec
func NewSeflowServiceClient(cc grpc.ClientConnInterface) SeflowServiceClient {
	return &seflowServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *seflowServiceClient) Rebalance(ctx context.Context, in *RebalanceRequest, opts ...grpc.CallOption) (*RebalanceResponse, error) {
	return invoke[RebalanceResponse](ctx, c.cc, SeflowService_Rebalance_FullMethodName, in, opts)
}

func (c *seflowServiceClient) PreviewSplit(ctx context.Context, in *PreviewSplitRequest, opts ...grpc.CallOption) (*PreviewSplitResponse, error) {
	return invoke[PreviewSplitResponse](ctx, c.cc, SeflowService_PreviewSplit_FullMethodName, in, opts)
}

func (c *seflowServiceClient) SubmitSplit(ctx context.Context, in *SubmitSplitRequest, opts ...grpc.CallOption) (*SubmitSplitResponse, error) {
	return invoke[SubmitSplitResponse](ctx, c.cc, SeflowService_SubmitSplit_FullMethodName, in, opts)
}

func (c *seflowServiceClient) GetDashboard(ctx context.Context, in *GetDashboardRequest, opts ...grpc.CallOption) (*GetDashboardResponse, error) {
	return invoke[GetDashboardResponse](ctx, c.cc, SeflowService_GetDashboard_FullMethodName, in, opts)
}

func (c *seflowServiceClient) ListTransactions(ctx context.Context, in *ListTransactionsRequest, opts ...grpc.CallOption) (*ListTransactionsResponse, error) {
	return invoke[ListTransactionsResponse](ctx, c.cc, SeflowService_ListTransactions_FullMethodName, in, opts)
}

func (c *seflowServiceClient) GetContractStats(ctx context.Context, in *GetContractStatsRequest, opts ...grpc.CallOption) (*GetContractStatsResponse, error) {
	return invoke[GetContractStatsResponse](ctx, c.cc, SeflowService_GetContractStats_FullMethodName, in, opts)
}

func (c *seflowServiceClient) GetLPPosition(ctx context.Context, in *GetLPPositionRequest, opts ...grpc.CallOption) (*GetLPPositionResponse, error) {
	return invoke[GetLPPositionResponse](ctx, c.cc, SeflowService_GetLPPosition_FullMethodName, in, opts)
}

func (c *seflowServiceClient) CompoundYield(ctx context.Context, in *CompoundYieldRequest, opts ...grpc.CallOption) (*CompoundYieldResponse, error) {
	return invoke[CompoundYieldResponse](ctx, c.cc, SeflowService_CompoundYield_FullMethodName, in, opts)
}

func (c *seflowServiceClient) EnableAutoCompound(ctx context.Context, in *EnableAutoCompoundRequest, opts ...grpc.CallOption) (*AutoCompoundStatus, error) {
	return invoke[AutoCompoundStatus](ctx, c.cc, SeflowService_EnableAutoCompound_FullMethodName, in, opts)
}

func (c *seflowServiceClient) DisableAutoCompound(ctx context.Context, in *DisableAutoCompoundRequest, opts ...grpc.CallOption) (*AutoCompoundStatus, error) {
	return invoke[AutoCompoundStatus](ctx, c.cc, SeflowService_DisableAutoCompound_FullMethodName, in, opts)
}

func (c *seflowServiceClient) GetAutoCompoundStatus(ctx context.Context, in *GetAutoCompoundStatusRequest, opts ...grpc.CallOption) (*AutoCompoundStatus, error) {
	return invoke[AutoCompoundStatus](ctx, c.cc, SeflowService_GetAutoCompoundStatus_FullMethodName, in, opts)
}
