package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	serviceName      = "linkshort.Links"
	createMethodName = "/" + serviceName + "/Create"
	getMethodName    = "/" + serviceName + "/Get"
	pingMethodName   = "/" + serviceName + "/Ping"
)

// LinksServer определяет gRPC сервис коротких ссылок.
// Сообщения сервиса - стандартные типы-обертки protobuf.
type LinksServer interface {
	// Create принимает исходную ссылку и возвращает идентификатор созданной ссылки.
	Create(ctx context.Context, url *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// Get принимает идентификатор и возвращает исходную ссылку.
	Get(ctx context.Context, id *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// Ping сообщает, доступно ли хранилище ссылок.
	Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error)
}

// LinksServiceDesc описывает сервис для регистрации на gRPC сервере.
var LinksServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LinksServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Create",
			Handler:    createHandler,
		},
		{
			MethodName: "Get",
			Handler:    getHandler,
		},
		{
			MethodName: "Ping",
			Handler:    pingHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "linkshort/links.proto",
}

// Register регистрирует сервис ссылок на gRPC сервере.
func Register(s grpc.ServiceRegistrar, srv LinksServer) {
	s.RegisterService(&LinksServiceDesc, srv)
}

//nolint:lll // grpc method handler signature
func createHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinksServer).Create(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: createMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LinksServer).Create(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:lll // grpc method handler signature
func getHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinksServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LinksServer).Get(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:lll // grpc method handler signature
func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinksServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: pingMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LinksServer).Ping(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// LinksClient вызывает методы сервиса ссылок.
type LinksClient struct {
	conn grpc.ClientConnInterface
}

// NewLinksClient создает клиента сервиса ссылок поверх соединения.
func NewLinksClient(conn grpc.ClientConnInterface) *LinksClient {
	return &LinksClient{conn: conn}
}

// Create создает короткую ссылку.
func (c *LinksClient) Create(ctx context.Context, url string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, createMethodName, wrapperspb.String(url), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Get возвращает исходную ссылку по идентификатору.
func (c *LinksClient) Get(ctx context.Context, id string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, getMethodName, wrapperspb.String(id), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Ping проверяет доступность сервиса.
func (c *LinksClient) Ping(ctx context.Context, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, pingMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}
