package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "docfields.v1.ExtractionService"

// ExtractionServer is the gRPC surface. Every message is a google.protobuf.Struct
// so clients need no generated stubs.
type ExtractionServer interface {
	// Classify takes {"text"} and returns {"doc_type", "scheme", "scores"}.
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Extract takes {"text", "doc_type"?} and returns a document result.
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// ExtractFile takes {"path"} readable by the server and returns a document result.
	ExtractFile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetExtraction takes {"id"} and returns a stored document result.
	GetExtraction(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ExtractionServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ExtractionServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ExtractionServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ExtractionServiceDesc describes ExtractionServer for grpc.Server.RegisterService.
var ExtractionServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Classify", ExtractionServer.Classify),
		unary("Extract", ExtractionServer.Extract),
		unary("ExtractFile", ExtractionServer.ExtractFile),
		unary("GetExtraction", ExtractionServer.GetExtraction),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docfields/v1/extraction.proto",
}

func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&ExtractionServiceDesc, srv)
}

// ExtractionClient calls ExtractionServer over a client connection.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

func (c *ExtractionClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ExtractionClient) Classify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Classify", in, opts...)
}

func (c *ExtractionClient) Extract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Extract", in, opts...)
}

func (c *ExtractionClient) ExtractFile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ExtractFile", in, opts...)
}

func (c *ExtractionClient) GetExtraction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetExtraction", in, opts...)
}
