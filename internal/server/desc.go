package server

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "legaldocs.v1.IntakeService"

// IntakeServiceServer is the server API for the intake service.
type IntakeServiceServer interface {
	Analyze(context.Context, *AnalyzeRequest) (*AnalyzeResponse, error)
	AnalyzeStream(*AnalyzeRequest, AnalyzeStreamServer) error
	ListAnalyses(context.Context, *ListAnalysesRequest) (*ListAnalysesResponse, error)
	GetAnalysis(context.Context, *GetAnalysisRequest) (*AnalyzeResponse, error)
	ExportAnalyses(context.Context, *ListAnalysesRequest) (*ExportAnalysesResponse, error)
	IngestFile(context.Context, *IngestFileRequest) (*AnalyzeResponse, error)
	IngestDirectory(context.Context, *IngestDirectoryRequest) (*IngestDirectoryResponse, error)
}

type AnalyzeStreamServer interface {
	Send(*AnalyzeEvent) error
	grpc.ServerStream
}

type analyzeStreamServer struct {
	grpc.ServerStream
}

func (s *analyzeStreamServer) Send(e *AnalyzeEvent) error {
	return s.ServerStream.SendMsg(e)
}

func RegisterIntakeServiceServer(s grpc.ServiceRegistrar, srv IntakeServiceServer) {
	s.RegisterService(&IntakeServiceDesc, srv)
}

// unary builds a grpc method handler for a request type Req.
func unary[Req any, Resp any](method string, call func(IntakeServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(IntakeServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(IntakeServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func analyzeStreamHandler(srv any, stream grpc.ServerStream) error {
	in := new(AnalyzeRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(IntakeServiceServer).AnalyzeStream(in, &analyzeStreamServer{stream})
}

var IntakeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IntakeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Analyze", IntakeServiceServer.Analyze),
		unary("ListAnalyses", IntakeServiceServer.ListAnalyses),
		unary("GetAnalysis", IntakeServiceServer.GetAnalysis),
		unary("ExportAnalyses", IntakeServiceServer.ExportAnalyses),
		unary("IngestFile", IntakeServiceServer.IngestFile),
		unary("IngestDirectory", IntakeServiceServer.IngestDirectory),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "AnalyzeStream",
			Handler:       analyzeStreamHandler,
			ServerStreams: true,
		},
	},
	Metadata: "legaldocs/v1/intake.json",
}

// IntakeServiceClient calls the intake service using the JSON codec.
type IntakeServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIntakeServiceClient(cc grpc.ClientConnInterface) *IntakeServiceClient {
	return &IntakeServiceClient{cc: cc}
}

func (c *IntakeServiceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *IntakeServiceClient) Analyze(ctx context.Context, in *AnalyzeRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error) {
	out := new(AnalyzeResponse)
	if err := c.invoke(ctx, "Analyze", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IntakeServiceClient) ListAnalyses(ctx context.Context, in *ListAnalysesRequest, opts ...grpc.CallOption) (*ListAnalysesResponse, error) {
	out := new(ListAnalysesResponse)
	if err := c.invoke(ctx, "ListAnalyses", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IntakeServiceClient) GetAnalysis(ctx context.Context, in *GetAnalysisRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error) {
	out := new(AnalyzeResponse)
	if err := c.invoke(ctx, "GetAnalysis", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IntakeServiceClient) ExportAnalyses(ctx context.Context, in *ListAnalysesRequest, opts ...grpc.CallOption) (*ExportAnalysesResponse, error) {
	out := new(ExportAnalysesResponse)
	if err := c.invoke(ctx, "ExportAnalyses", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IntakeServiceClient) IngestFile(ctx context.Context, in *IngestFileRequest, opts ...grpc.CallOption) (*AnalyzeResponse, error) {
	out := new(AnalyzeResponse)
	if err := c.invoke(ctx, "IngestFile", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *IntakeServiceClient) IngestDirectory(ctx context.Context, in *IngestDirectoryRequest, opts ...grpc.CallOption) (*IngestDirectoryResponse, error) {
	out := new(IngestDirectoryResponse)
	if err := c.invoke(ctx, "IngestDirectory", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// AnalyzeStream opens the server stream and sends the single request.
func (c *IntakeServiceClient) AnalyzeStream(ctx context.Context, in *AnalyzeRequest, opts ...grpc.CallOption) (*AnalyzeStreamClient, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &IntakeServiceDesc.Streams[0], "/"+ServiceName+"/AnalyzeStream", opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &AnalyzeStreamClient{stream}, nil
}

type AnalyzeStreamClient struct {
	grpc.ClientStream
}

// Recv returns io.EOF once the server has sent the result.
func (s *AnalyzeStreamClient) Recv() (*AnalyzeEvent, error) {
	e := new(AnalyzeEvent)
	if err := s.ClientStream.RecvMsg(e); err != nil {
		return nil, err
	}
	return e, nil
}
