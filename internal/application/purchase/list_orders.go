package purchase

import (
	"context"
	"fmt"

	"github.com/xiebiao/bookmall/internal/domain/purchase"
)

// ListPurchaseOrdersUseCase 采购单列表查询用例(管理员,分页,可按状态过滤)
type ListPurchaseOrdersUseCase struct {
	purchaseRepo purchase.Repository
}

// NewListPurchaseOrdersUseCase 创建采购单列表用例
func NewListPurchaseOrdersUseCase(purchaseRepo purchase.Repository) *ListPurchaseOrdersUseCase {
	return &ListPurchaseOrdersUseCase{purchaseRepo: purchaseRepo}
}

// ListPurchaseOrdersRequest 列表请求DTO
type ListPurchaseOrdersRequest struct {
	Status   int // 0=全部 1=待确认 2=已确认 3=已取消
	Page     int
	PageSize int
}

// PurchaseItemDTO 采购单明细行DTO
type PurchaseItemDTO struct {
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	UnitCost int64  `json:"unit_cost"` // 进货单价快照(分)
}

// PurchaseOrderDTO 采购单DTO
type PurchaseOrderDTO struct {
	ID          uint              `json:"id"`
	PONo        string            `json:"po_no"`
	Publisher   string            `json:"publisher"`
	Status      string            `json:"status"`
	Total       int64             `json:"total"` // 明细合计(分)
	TotalYuan   string            `json:"total_yuan"`
	Items       []PurchaseItemDTO `json:"items"`
	ConfirmedAt string            `json:"confirmed_at,omitempty"`
	CreatedAt   string            `json:"created_at"`
}

// ListPurchaseOrdersResponse 列表响应DTO
type ListPurchaseOrdersResponse struct {
	List     []PurchaseOrderDTO `json:"list"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// Execute 执行采购单列表查询
func (uc *ListPurchaseOrdersUseCase) Execute(ctx context.Context, req ListPurchaseOrdersRequest) (*ListPurchaseOrdersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	orders, total, err := uc.purchaseRepo.List(ctx, purchase.Status(req.Status), req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]PurchaseOrderDTO, len(orders))
	for i, po := range orders {
		list[i] = toPurchaseOrderDTO(po)
	}

	return &ListPurchaseOrdersResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func toPurchaseOrderDTO(po *purchase.Order) PurchaseOrderDTO {
	items := make([]PurchaseItemDTO, len(po.Items))
	var total int64
	for i, item := range po.Items {
		items[i] = PurchaseItemDTO{
			ISBN:     item.ISBN,
			Title:    item.Title,
			Quantity: item.Quantity,
			UnitCost: item.UnitCost,
		}
		total += item.UnitCost * int64(item.Quantity)
	}

	dto := PurchaseOrderDTO{
		ID:        po.ID,
		PONo:      po.PONo,
		Publisher: po.Publisher,
		Status:    po.Status.String(),
		Total:     total,
		TotalYuan: fmt.Sprintf("%.2f", float64(total)/100.0),
		Items:     items,
		CreatedAt: po.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if po.ConfirmedAt != nil {
		dto.ConfirmedAt = po.ConfirmedAt.Format("2006-01-02 15:04:05")
	}
	return dto
}
