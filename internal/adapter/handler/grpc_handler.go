package handler

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/pizzan/internal/core/domain"
	"github.com/rl1809/pizzan/internal/core/service"
)

const catalogServiceName = "pizzan.catalog.v1.Catalog"

type ListFoodsRequest struct {
	Page      int    `json:"page"`
	Size      int    `json:"size"`
	Email     string `json:"email,omitempty"`
	SortField string `json:"sort_field,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
}

type ListFoodsResponse struct {
	Foods []domain.MenuItem `json:"foods"`
}

type GetFoodRequest struct {
	ID string `json:"id"`
}

type CountFoodsRequest struct{}

type CountFoodsResponse struct {
	Count int64 `json:"count"`
}

// CatalogServer is the read-only catalog API exposed over gRPC.
type CatalogServer interface {
	ListFoods(context.Context, *ListFoodsRequest) (*ListFoodsResponse, error)
	GetFood(context.Context, *GetFoodRequest) (*domain.MenuItem, error)
	CountFoods(context.Context, *CountFoodsRequest) (*CountFoodsResponse, error)
}

type GRPCHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewGRPCHandler(catalog *service.CatalogService, logger *slog.Logger) *GRPCHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GRPCHandler{catalog: catalog, logger: logger}
}

func (h *GRPCHandler) ListFoods(ctx context.Context, req *ListFoodsRequest) (*ListFoodsResponse, error) {
	desc, err := service.ParseSortOrder(req.SortOrder)
	if err != nil {
		return nil, h.toStatus("ListFoods", err)
	}

	items, err := h.catalog.List(ctx, domain.FoodQuery{
		Email:     req.Email,
		SortField: req.SortField,
		SortDesc:  desc,
		Page:      req.Page,
		Size:      req.Size,
	})
	if err != nil {
		return nil, h.toStatus("ListFoods", err)
	}
	return &ListFoodsResponse{Foods: items}, nil
}

func (h *GRPCHandler) GetFood(ctx context.Context, req *GetFoodRequest) (*domain.MenuItem, error) {
	item, err := h.catalog.Get(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus("GetFood", err)
	}
	return item, nil
}

func (h *GRPCHandler) CountFoods(ctx context.Context, req *CountFoodsRequest) (*CountFoodsResponse, error) {
	count, err := h.catalog.Count(ctx)
	if err != nil {
		return nil, h.toStatus("CountFoods", err)
	}
	return &CountFoodsResponse{Count: count}, nil
}

func (h *GRPCHandler) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, service.ErrInvalidPagination),
		errors.Is(err, service.ErrInvalidSort):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	h.logger.Error("grpc request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}

// RegisterCatalogServer attaches srv to a gRPC server.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: catalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListFoods",
			Handler: unaryHandler("ListFoods", func(srv CatalogServer, ctx context.Context, in *ListFoodsRequest) (any, error) {
				return srv.ListFoods(ctx, in)
			}),
		},
		{
			MethodName: "GetFood",
			Handler: unaryHandler("GetFood", func(srv CatalogServer, ctx context.Context, in *GetFoodRequest) (any, error) {
				return srv.GetFood(ctx, in)
			}),
		},
		{
			MethodName: "CountFoods",
			Handler: unaryHandler("CountFoods", func(srv CatalogServer, ctx context.Context, in *CountFoodsRequest) (any, error) {
				return srv.CountFoods(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pizzan/catalog/v1",
}

// unaryHandler adapts a typed method to grpc.MethodDesc's handler shape.
func unaryHandler[Req any](method string, call func(CatalogServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	fullMethod := "/" + catalogServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CatalogClient calls the catalog service with the JSON codec.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) ListFoods(ctx context.Context, in *ListFoodsRequest, opts ...grpc.CallOption) (*ListFoodsResponse, error) {
	out := new(ListFoodsResponse)
	if err := c.invoke(ctx, "ListFoods", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetFood(ctx context.Context, in *GetFoodRequest, opts ...grpc.CallOption) (*domain.MenuItem, error) {
	out := new(domain.MenuItem)
	if err := c.invoke(ctx, "GetFood", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) CountFoods(ctx context.Context, in *CountFoodsRequest, opts ...grpc.CallOption) (*CountFoodsResponse, error) {
	out := new(CountFoodsResponse)
	if err := c.invoke(ctx, "CountFoods", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+catalogServiceName+"/"+method, in, out, opts...)
}
