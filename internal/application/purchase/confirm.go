package purchase

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/bookmall/internal/domain/purchase"
	"github.com/xiebiao/bookmall/internal/domain/stock"
	"github.com/xiebiao/bookmall/internal/infrastructure/eventbus"
	"github.com/xiebiao/bookmall/pkg/mq"
)

// ConfirmUseCase 采购单确认用例(管理员)
// 幂等规则:
// - Pending:确认成功,逐行入库,恰好一次
// - 已Confirmed:无操作成功,响应带already_confirmed标记,库存不变
// - 已Cancelled:终态,拒绝
// 并发的两次确认由行锁串行化,只有一次真正入库
type ConfirmUseCase struct {
	purchaseRepo purchase.Repository
	ledger       stock.Ledger
	txManager    TxManager
	events       eventbus.Publisher
}

// NewConfirmUseCase 创建确认用例
func NewConfirmUseCase(
	purchaseRepo purchase.Repository,
	ledger stock.Ledger,
	txManager TxManager,
	events eventbus.Publisher,
) *ConfirmUseCase {
	return &ConfirmUseCase{
		purchaseRepo: purchaseRepo,
		ledger:       ledger,
		txManager:    txManager,
		events:       events,
	}
}

// ConfirmResponse 确认响应DTO
type ConfirmResponse struct {
	PONo             string `json:"po_no"`
	Status           string `json:"status"`
	AlreadyConfirmed bool   `json:"already_confirmed"`
	ConfirmedAt      string `json:"confirmed_at,omitempty"`
}

// Execute 执行确认
func (uc *ConfirmUseCase) Execute(ctx context.Context, poID uint) (*ConfirmResponse, error) {
	var confirmed *purchase.Order
	alreadyConfirmed := false

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		po, err := uc.purchaseRepo.LockByID(txCtx, poID)
		if err != nil {
			return err
		}

		if err := po.Confirm(time.Now()); err != nil {
			if errors.Is(err, purchase.ErrAlreadyConfirmed) {
				// 幂等:重复确认按无操作成功处理,不再入库
				alreadyConfirmed = true
				confirmed = po
				return nil
			}
			return err
		}

		if err := uc.purchaseRepo.Save(txCtx, po); err != nil {
			return err
		}

		// 逐行入库,与状态变更同事务:确认生效则库存必然到账
		for _, item := range po.Items {
			if _, err := uc.ledger.Increment(txCtx, item.ISBN, item.Quantity); err != nil {
				return err
			}
		}

		confirmed = po
		return nil
	})

	if err != nil {
		return nil, err
	}

	if !alreadyConfirmed && uc.events != nil {
		_ = uc.events.Publish(mq.RoutingKeyPurchaseClosed, mq.PurchaseOrderClosedEvent{
			PurchaseOrderID: confirmed.ID,
			PONo:            confirmed.PONo,
			Publisher:       confirmed.Publisher,
			Status:          int(confirmed.Status),
		})
	}

	resp := &ConfirmResponse{
		PONo:             confirmed.PONo,
		Status:           confirmed.Status.String(),
		AlreadyConfirmed: alreadyConfirmed,
	}
	if confirmed.ConfirmedAt != nil {
		resp.ConfirmedAt = confirmed.ConfirmedAt.Format("2006-01-02 15:04:05")
	}
	return resp, nil
}

// CancelUseCase 采购单取消用例(管理员)
// 仅限Pending;取消不影响库存(确认前什么都没入库)
type CancelUseCase struct {
	purchaseRepo purchase.Repository
	txManager    TxManager
	events       eventbus.Publisher
}

// NewCancelUseCase 创建取消用例
func NewCancelUseCase(
	purchaseRepo purchase.Repository,
	txManager TxManager,
	events eventbus.Publisher,
) *CancelUseCase {
	return &CancelUseCase{
		purchaseRepo: purchaseRepo,
		txManager:    txManager,
		events:       events,
	}
}

// Execute 执行取消
func (uc *CancelUseCase) Execute(ctx context.Context, poID uint) error {
	var cancelled *purchase.Order

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		po, err := uc.purchaseRepo.LockByID(txCtx, poID)
		if err != nil {
			return err
		}

		if err := po.Cancel(); err != nil {
			return err
		}

		if err := uc.purchaseRepo.Save(txCtx, po); err != nil {
			return err
		}

		cancelled = po
		return nil
	})

	if err != nil {
		return err
	}

	if uc.events != nil {
		_ = uc.events.Publish(mq.RoutingKeyPurchaseClosed, mq.PurchaseOrderClosedEvent{
			PurchaseOrderID: cancelled.ID,
			PONo:            cancelled.PONo,
			Publisher:       cancelled.Publisher,
			Status:          int(cancelled.Status),
		})
	}

	return nil
}
