package grpcsvc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName — полное имя gRPC-сервиса витрины.
const ServiceName = "jourmarche.v1.Storefront"

// StorefrontServer — серверная часть jourmarche.v1.Storefront.
type StorefrontServer interface {
	GetCart(context.Context, *Empty) (*CartResponse, error)
	AddToCart(context.Context, *AddToCartRequest) (*CartResponse, error)
	UpdateQuantity(context.Context, *UpdateQuantityRequest) (*CartResponse, error)
	RemoveFromCart(context.Context, *RemoveFromCartRequest) (*CartResponse, error)
	ClearCart(context.Context, *Empty) (*CartResponse, error)
	QuoteCart(context.Context, *QuoteCartRequest) (*QuoteCartResponse, error)
	Checkout(context.Context, *CheckoutRequest) (*OrderResponse, error)

	CreateOrder(context.Context, *CreateOrderRequest) (*OrderResponse, error)
	UpdateOrderStatus(context.Context, *UpdateOrderStatusRequest) (*OrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)

	Login(context.Context, *LoginRequest) (*UserResponse, error)
	Signup(context.Context, *SignupRequest) (*UserResponse, error)
	Logout(context.Context, *Empty) (*UserResponse, error)
	CurrentUser(context.Context, *Empty) (*UserResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UserResponse, error)

	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	ListCategories(context.Context, *Empty) (*ListCategoriesResponse, error)
}

// unary собирает описание unary-метода: декодирует запрос и пропускает вызов через interceptor.
func unary[Req, Resp any](name string, call func(StorefrontServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StorefrontServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StorefrontServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc описывает jourmarche.v1.Storefront для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StorefrontServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetCart", StorefrontServer.GetCart),
		unary("AddToCart", StorefrontServer.AddToCart),
		unary("UpdateQuantity", StorefrontServer.UpdateQuantity),
		unary("RemoveFromCart", StorefrontServer.RemoveFromCart),
		unary("ClearCart", StorefrontServer.ClearCart),
		unary("QuoteCart", StorefrontServer.QuoteCart),
		unary("Checkout", StorefrontServer.Checkout),
		unary("CreateOrder", StorefrontServer.CreateOrder),
		unary("UpdateOrderStatus", StorefrontServer.UpdateOrderStatus),
		unary("GetOrder", StorefrontServer.GetOrder),
		unary("ListOrders", StorefrontServer.ListOrders),
		unary("Login", StorefrontServer.Login),
		unary("Signup", StorefrontServer.Signup),
		unary("Logout", StorefrontServer.Logout),
		unary("CurrentUser", StorefrontServer.CurrentUser),
		unary("UpdateUser", StorefrontServer.UpdateUser),
		unary("ListProducts", StorefrontServer.ListProducts),
		unary("ListCategories", StorefrontServer.ListCategories),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jourmarche/v1/storefront",
}

// RegisterStorefrontServer регистрирует реализацию на gRPC-сервере.
func RegisterStorefrontServer(registrar grpc.ServiceRegistrar, srv StorefrontServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}
