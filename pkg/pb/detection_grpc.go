package pb

import (
	"context"

	"google.golang.org/grpc"
)

const (
	DrowsinessModel_Predict_FullMethodName = "/drowsiness.v1.DrowsinessModel/Predict"
	DrowsinessModel_Health_FullMethodName  = "/drowsiness.v1.DrowsinessModel/Health"
)

// DrowsinessModelClient is the client API for the DrowsinessModel service.
type DrowsinessModelClient interface {
	Predict(ctx context.Context, in *ImageTensor, opts ...grpc.CallOption) (*Prediction, error)
	Health(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*HealthStatus, error)
}

type drowsinessModelClient struct {
	cc grpc.ClientConnInterface
}

func NewDrowsinessModelClient(cc grpc.ClientConnInterface) DrowsinessModelClient {
	return &drowsinessModelClient{cc}
}

func (c *drowsinessModelClient) Predict(ctx context.Context, in *ImageTensor, opts ...grpc.CallOption) (*Prediction, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	out := new(Prediction)
	if err := c.cc.Invoke(ctx, DrowsinessModel_Predict_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *drowsinessModelClient) Health(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*HealthStatus, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	out := new(HealthStatus)
	if err := c.cc.Invoke(ctx, DrowsinessModel_Health_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DrowsinessModelServer is the server API for the DrowsinessModel service.
type DrowsinessModelServer interface {
	Predict(context.Context, *ImageTensor) (*Prediction, error)
	Health(context.Context, *Empty) (*HealthStatus, error)
}

func RegisterDrowsinessModelServer(s grpc.ServiceRegistrar, srv DrowsinessModelServer) {
	s.RegisterService(&DrowsinessModel_ServiceDesc, srv)
}

func _DrowsinessModel_Predict_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ImageTensor)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DrowsinessModelServer).Predict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: DrowsinessModel_Predict_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DrowsinessModelServer).Predict(ctx, req.(*ImageTensor))
	}
	return interceptor(ctx, in, info, handler)
}

func _DrowsinessModel_Health_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DrowsinessModelServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: DrowsinessModel_Health_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DrowsinessModelServer).Health(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var DrowsinessModel_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "drowsiness.v1.DrowsinessModel",
	HandlerType: (*DrowsinessModelServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Predict",
			Handler:    _DrowsinessModel_Predict_Handler,
		},
		{
			MethodName: "Health",
			Handler:    _DrowsinessModel_Health_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proto/detection.proto",
}
