package grpcsvc

import (
	"context"

	"google.golang.org/grpc"
)

// Client — клиент jourmarche.v1.Storefront с JSON-кодеком.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient создаёт клиент поверх соединения.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCart(ctx context.Context, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "GetCart", &Empty{}, opts...)
}

func (c *Client) AddToCart(ctx context.Context, in *AddToCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "AddToCart", in, opts...)
}

func (c *Client) UpdateQuantity(ctx context.Context, in *UpdateQuantityRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "UpdateQuantity", in, opts...)
}

func (c *Client) RemoveFromCart(ctx context.Context, in *RemoveFromCartRequest, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "RemoveFromCart", in, opts...)
}

func (c *Client) ClearCart(ctx context.Context, opts ...grpc.CallOption) (*CartResponse, error) {
	return invoke[CartResponse](ctx, c, "ClearCart", &Empty{}, opts...)
}

func (c *Client) Checkout(ctx context.Context, in *CheckoutRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c, "Checkout", in, opts...)
}

func (c *Client) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c, "CreateOrder", in, opts...)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, in *UpdateOrderStatusRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c, "UpdateOrderStatus", in, opts...)
}

func (c *Client) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	return invoke[GetOrderResponse](ctx, c, "GetOrder", in, opts...)
}

func (c *Client) QuoteCart(ctx context.Context, in *QuoteCartRequest, opts ...grpc.CallOption) (*QuoteCartResponse, error) {
	return invoke[QuoteCartResponse](ctx, c, "QuoteCart", in, opts...)
}

func (c *Client) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return invoke[ListOrdersResponse](ctx, c, "ListOrders", in, opts...)
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "Login", in, opts...)
}

func (c *Client) Signup(ctx context.Context, in *SignupRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "Signup", in, opts...)
}

func (c *Client) Logout(ctx context.Context, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "Logout", &Empty{}, opts...)
}

func (c *Client) CurrentUser(ctx context.Context, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "CurrentUser", &Empty{}, opts...)
}

func (c *Client) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return invoke[UserResponse](ctx, c, "UpdateUser", in, opts...)
}

func (c *Client) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c, "ListProducts", in, opts...)
}

func (c *Client) ListCategories(ctx context.Context, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	return invoke[ListCategoriesResponse](ctx, c, "ListCategories", &Empty{}, opts...)
}
