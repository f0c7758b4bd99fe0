package purchase

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/purchase"
	"github.com/xiebiao/bookmall/internal/infrastructure/config"
	"github.com/xiebiao/bookmall/internal/infrastructure/eventbus"
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/mq"
)

// TxManager 事务管理接口
// 生产环境注入mysql.TxManager;单元测试注入内存实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReplenishUseCase 补货触发用例
// 设计说明:
// 1. 按出版社聚合:聚合窗口内同一出版社的多次低库存触发
//    合并到同一张待确认采购单,而不是每次各开一张
// 2. 聚合的并发安全靠行锁待确认单(LockOpenByPublisher):
//    两个并发触发串行通过,后者看到前者开的单并合并进去
// 3. 补货量策略:补到 阈值×系数 的水位(默认2倍),至少1本
// 4. 单价快照:触发时的进货价
type ReplenishUseCase struct {
	bookRepo     book.Repository
	purchaseRepo purchase.Repository
	txManager    TxManager
	cfg          config.ReplenishConfig
	events       eventbus.Publisher
}

// NewReplenishUseCase 创建补货触发用例
func NewReplenishUseCase(
	bookRepo book.Repository,
	purchaseRepo purchase.Repository,
	txManager TxManager,
	cfg config.ReplenishConfig,
	events eventbus.Publisher,
) *ReplenishUseCase {
	return &ReplenishUseCase{
		bookRepo:     bookRepo,
		purchaseRepo: purchaseRepo,
		txManager:    txManager,
		cfg:          cfg,
		events:       events,
	}
}

// Trigger 触发一次补货
// 幂等性说明:同一本书重复触发只会把待确认单上该ISBN行的数量
// 抬高,不会开出第二张单;已确认/已取消的单不再吸收触发
func (uc *ReplenishUseCase) Trigger(ctx context.Context, isbn string) error {
	b, err := uc.bookRepo.FindByISBN(ctx, isbn)
	if err != nil {
		return err
	}

	// 触发和处理之间库存可能已经回补,二次确认再开单
	if !b.NeedsReplenishment(b.Stock) {
		return nil
	}

	qty := uc.cfg.RestockQuantity(b.ReorderThreshold, b.Stock)

	var opened *purchase.Order
	var isNew bool

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 窗口起点:window<=0表示不限时,Pending单一直吸收
		var since time.Time
		if uc.cfg.Window > 0 {
			since = time.Now().Add(-uc.cfg.Window)
		}

		line := purchase.Item{
			BookID:   b.ID,
			ISBN:     b.ISBN,
			Title:    b.Title,
			Quantity: qty,
			UnitCost: b.CostPrice,
		}

		po, err := uc.purchaseRepo.LockOpenByPublisher(txCtx, b.Publisher, since)
		if errors.Is(err, purchase.ErrOrderNotFound) {
			// 窗口内没有待确认单:开新单
			po = purchase.NewOrder(purchase.GeneratePONo(), b.Publisher)
			if err := po.AddOrBumpItem(line); err != nil {
				return err
			}
			if err := uc.purchaseRepo.Create(txCtx, po); err != nil {
				return err
			}
			isNew = true
			opened = po
			return nil
		}
		if err != nil {
			return err
		}

		// 合并进已有单:同ISBN抬数量,新ISBN追加行
		if err := po.AddOrBumpItem(line); err != nil {
			return err
		}
		if err := uc.purchaseRepo.Save(txCtx, po); err != nil {
			return err
		}
		opened = po
		return nil
	})

	if err != nil {
		return err
	}

	if isNew {
		if metrics.PurchaseOrdersOpenedTotal != nil {
			metrics.IncCounter(metrics.PurchaseOrdersOpenedTotal)
		}
		if uc.events != nil {
			_ = uc.events.Publish(mq.RoutingKeyPurchaseOpened, mq.PurchaseOrderOpenedEvent{
				PurchaseOrderID: opened.ID,
				PONo:            opened.PONo,
				Publisher:       opened.Publisher,
			})
		}
	} else if metrics.PurchaseTriggersCoalescedTotal != nil {
		metrics.IncCounter(metrics.PurchaseTriggersCoalescedTotal)
	}

	return nil
}
