package order

import (
	"context"

	apperrors "github.com/xiebiao/bookmall/pkg/errors"

	"github.com/xiebiao/bookmall/internal/domain/order"
)

// UpdateStatusUseCase 订单状态流转用例(管理员)
// 状态机:待处理 → 处理中 → 已发货 → 已送达
// 非法跳转(如待处理直接到已送达)由实体的转移表拒绝;
// 取消走专门的CancelOrderUseCase(涉及库存回补)
type UpdateStatusUseCase struct {
	orderRepo order.Repository
}

// NewUpdateStatusUseCase 创建状态流转用例
func NewUpdateStatusUseCase(orderRepo order.Repository) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{orderRepo: orderRepo}
}

// UpdateStatusRequest 状态流转请求DTO
type UpdateStatusRequest struct {
	OrderID uint
	Status  int // 状态码(2=处理中 3=已发货 4=已送达)
}

// Execute 执行状态流转
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, req UpdateStatusRequest) error {
	target, ok := order.ParseStatus(req.Status)
	if !ok {
		return apperrors.New(apperrors.ErrCodeInvalidParams, "无效的订单状态")
	}

	// 取消必须走CancelOrderUseCase,否则库存不会回补
	if target == order.StatusCancelled {
		return apperrors.New(apperrors.ErrCodeInvalidParams, "取消订单请使用取消接口")
	}

	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return err
	}

	if err := o.TransitionTo(target); err != nil {
		return err
	}

	return uc.orderRepo.UpdateStatus(ctx, o)
}
