package order

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/order"
)

// ListOrdersUseCase 订单列表查询用例(本人的订单,分页,含明细)
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListOrdersRequest 列表请求DTO
type ListOrdersRequest struct {
	UserID   uint
	Page     int
	PageSize int
}

// OrderSummary 订单摘要DTO
type OrderSummary struct {
	ID        uint           `json:"id"`
	OrderNo   string         `json:"order_no"`
	Total     int64          `json:"total"`
	TotalYuan string         `json:"total_yuan"`
	Status    string         `json:"status"`
	Items     []CheckoutItem `json:"items"`
	CreatedAt string         `json:"created_at"`
}

// ListOrdersResponse 列表响应DTO
type ListOrdersResponse struct {
	List     []OrderSummary `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Execute 执行订单列表查询
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	orders, total, err := uc.orderRepo.ListByUserID(ctx, req.UserID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]OrderSummary, len(orders))
	for i, o := range orders {
		list[i] = toOrderSummary(o)
	}

	return &ListOrdersResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// GetOrderUseCase 订单详情查询用例(本人或管理员)
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建订单详情用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// GetOrderResponse 订单详情DTO
type GetOrderResponse struct {
	ID              uint           `json:"id"`
	OrderNo         string         `json:"order_no"`
	Total           int64          `json:"total"`
	TotalYuan       string         `json:"total_yuan"`
	Status          string         `json:"status"`
	ShippingAddress string         `json:"shipping_address"`
	Notes           string         `json:"notes,omitempty"`
	CardRef         string         `json:"card_ref"`
	Items           []CheckoutItem `json:"items"`
	CreatedAt       string         `json:"created_at"`
	UpdatedAt       string         `json:"updated_at"`
}

// Execute 执行订单详情查询
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID, userID uint, isAdmin bool) (*GetOrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && !o.IsOwnedBy(userID) {
		return nil, order.ErrUnauthorized
	}

	items := make([]CheckoutItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = CheckoutItem{
			ISBN:     item.ISBN,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	return &GetOrderResponse{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		Total:           o.Total,
		TotalYuan:       formatPrice(o.Total),
		Status:          o.Status.String(),
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		CardRef:         o.CardRef,
		Items:           items,
		CreatedAt:       o.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:       o.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

func toOrderSummary(o *order.Order) OrderSummary {
	items := make([]CheckoutItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = CheckoutItem{
			ISBN:     item.ISBN,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}
	return OrderSummary{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		Total:     o.Total,
		TotalYuan: formatPrice(o.Total),
		Status:    o.Status.String(),
		Items:     items,
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
