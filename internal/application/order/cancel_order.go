package order

import (
	"context"
	"time"

	"github.com/xiebiao/bookmall/internal/domain/order"
	"github.com/xiebiao/bookmall/internal/domain/stock"
	"github.com/xiebiao/bookmall/internal/infrastructure/eventbus"
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/mq"
)

// CancelOrderUseCase 取消订单用例
// 业务规则:
// 1. 只有待处理/处理中的订单可以取消,发货后不可取消
// 2. 取消时逐行回补库存,状态变更与回补在同一事务内
// 3. 本人或管理员可操作
type CancelOrderUseCase struct {
	orderRepo order.Repository
	ledger    stock.Ledger
	txManager TxManager
	events    eventbus.Publisher
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	ledger stock.Ledger,
	txManager TxManager,
	events eventbus.Publisher,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo: orderRepo,
		ledger:    ledger,
		txManager: txManager,
		events:    events,
	}
}

// Execute 执行取消订单
func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID, userID uint, isAdmin bool) error {
	var cancelled *order.Order

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		if !isAdmin && !o.IsOwnedBy(userID) {
			return order.ErrUnauthorized
		}

		// 状态机校验:Pending/Processing可取消,Shipped之后拒绝
		if err := o.Cancel(); err != nil {
			return err
		}

		if err := uc.orderRepo.UpdateStatus(txCtx, o); err != nil {
			return err
		}

		// 逐行回补库存,与状态变更同事务:
		// 要么订单取消且库存全部恢复,要么都不发生
		for _, item := range o.Items {
			if _, err := uc.ledger.Increment(txCtx, item.ISBN, item.Quantity); err != nil {
				return err
			}
		}

		cancelled = o
		return nil
	})

	if err != nil {
		return err
	}

	if uc.events != nil {
		_ = uc.events.Publish(mq.RoutingKeyOrderCancelled, mq.OrderCancelledEvent{
			OrderID:     cancelled.ID,
			OrderNo:     cancelled.OrderNo,
			UserID:      cancelled.UserID,
			CancelledAt: time.Now(),
		})
	}

	if metrics.OrdersCancelledTotal != nil {
		metrics.IncCounter(metrics.OrdersCancelledTotal)
	}

	return nil
}
