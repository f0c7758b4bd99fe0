package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/cart"
	"github.com/xiebiao/bookmall/internal/domain/order"
	"github.com/xiebiao/bookmall/internal/domain/stock"
	"github.com/xiebiao/bookmall/internal/infrastructure/eventbus"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/mq"
)

// TxManager 事务管理接口
// 生产环境注入mysql.TxManager;单元测试注入内存实现
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Replenisher 补货触发接口(由purchase包的ReplenishUseCase实现)
type Replenisher interface {
	Trigger(ctx context.Context, isbn string) error
}

// CheckoutUseCase 结账用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、并发控制(按ISBN升序加行锁)、价格快照、补货联动
type CheckoutUseCase struct {
	cartRepo    cart.Repository
	bookRepo    book.Repository
	orderRepo   order.Repository
	ledger      stock.Ledger
	txManager   TxManager
	replenisher Replenisher
	events      eventbus.Publisher
}

// NewCheckoutUseCase 创建结账用例
func NewCheckoutUseCase(
	cartRepo cart.Repository,
	bookRepo book.Repository,
	orderRepo order.Repository,
	ledger stock.Ledger,
	txManager TxManager,
	replenisher Replenisher,
	events eventbus.Publisher,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		cartRepo:    cartRepo,
		bookRepo:    bookRepo,
		orderRepo:   orderRepo,
		ledger:      ledger,
		txManager:   txManager,
		replenisher: replenisher,
		events:      events,
	}
}

// CheckoutRequest 结账请求DTO
type CheckoutRequest struct {
	UserID          uint   // 买家用户ID(从JWT中提取)
	CardNumber      string // 银行卡号
	CardExpiry      string // 有效期 MM/YY
	ShippingAddress string // 收货地址
	Notes           string // 订单备注
}

// CheckoutItem 订单行DTO
type CheckoutItem struct {
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"` // 成交单价快照(分)
}

// CheckoutResponse 结账响应DTO
type CheckoutResponse struct {
	OrderID   uint           `json:"order_id"`
	OrderNo   string         `json:"order_no"`
	Total     int64          `json:"total"` // 总额(分)
	TotalYuan string         `json:"total_yuan"`
	Status    string         `json:"status"`
	Items     []CheckoutItem `json:"items"`
	CreatedAt string         `json:"created_at"`
}

// lowStockLine 事务内记录、事务提交后处理的低库存行
type lowStockLine struct {
	isbn      string
	title     string
	publisher string
	remaining int
	threshold int
}

// Execute 执行结账
//
// 核心问题:库存超卖与部分扣减
// 场景:库存5本,10人同时结账
// 正确实现:
//  1. 购物车行按ISBN升序排列(所有结账请求加锁顺序一致,不会死锁)
//  2. 逐行 SELECT FOR UPDATE + 条件扣减(stock >= qty)
//  3. 任何一行不足 → 收集完整短缺清单后整体回滚,已扣的行全部恢复
//  4. 全部成功 → 以扣减时的价格快照生成订单,清空购物车,同事务提交
//
// 价格快照:订单行记录的是加锁时读到的售价,
// 提交后改价不影响已成交订单
func (uc *CheckoutUseCase) Execute(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	start := time.Now()

	// 1. 载入购物车,空车直接拒绝
	c, err := uc.cartRepo.GetOrCreate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		uc.countResult("empty_cart")
		return nil, cart.ErrEmptyCart
	}

	// 2. 支付信息校验(只校验卡号格式与有效期,不做真实扣款)
	payment := order.PaymentInfo{
		CardNumber: req.CardNumber,
		CardExpiry: req.CardExpiry,
	}
	if err := payment.Validate(time.Now()); err != nil {
		if errors.Is(err, order.ErrExpiredPayment) {
			uc.countResult("payment_expired")
		}
		return nil, err
	}

	// 3. 原子结账事务
	var newOrder *order.Order
	var lowStock []lowStockLine

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 按ISBN升序逐行加锁,两个共享图书的结账请求
		// 永远以相同顺序获取行锁,不会交叉等待形成死锁
		items := c.SortedItems()

		var insufficient *stock.InsufficientError
		orderItems := make([]order.Item, 0, len(items))

		for _, item := range items {
			b, err := uc.bookRepo.LockByISBN(txCtx, item.ISBN)
			if err != nil {
				if errors.Is(err, book.ErrBookNotFound) {
					// 书在加购后被下架:按零库存计入短缺清单
					miss := stock.NewInsufficientError(item.ISBN, item.Quantity, 0)
					if insufficient == nil {
						insufficient = miss
					} else {
						insufficient.Merge(miss)
					}
					continue
				}
				return err
			}

			remaining, err := uc.ledger.TryDecrement(txCtx, item.ISBN, item.Quantity)
			if err != nil {
				var ins *stock.InsufficientError
				if errors.As(err, &ins) {
					// 不足的行不中断循环:继续收集,
					// 让买家一次看到完整的短缺清单
					if insufficient == nil {
						insufficient = ins
					} else {
						insufficient.Merge(ins)
					}
					continue
				}
				return err
			}

			// 价格快照:锁内读到的售价和书名
			orderItems = append(orderItems, order.Item{
				BookID:   b.ID,
				ISBN:     b.ISBN,
				Title:    b.Title,
				Quantity: item.Quantity,
				Price:    b.Price,
			})

			if b.NeedsReplenishment(remaining) {
				lowStock = append(lowStock, lowStockLine{
					isbn:      b.ISBN,
					title:     b.Title,
					publisher: b.Publisher,
					remaining: remaining,
					threshold: b.ReorderThreshold,
				})
			}
		}

		// 任何短缺 → 返回错误触发回滚,已扣减的行全部恢复
		if insufficient != nil {
			return insufficient
		}

		// 创建订单(实体内计算总额,一次定价)
		newOrder = order.NewOrder(
			order.GenerateOrderNo(),
			req.UserID,
			orderItems,
			req.ShippingAddress,
			req.Notes,
			payment.MaskedCard(),
		)
		if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
			return err
		}

		// 同事务内清空购物车:订单创建与清车原子生效
		if err := uc.cartRepo.Clear(txCtx, req.UserID); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		var ins *stock.InsufficientError
		if errors.As(err, &ins) {
			uc.countResult("insufficient_stock")
			if metrics.StockShortfallsTotal != nil {
				for range ins.Shortfalls {
					metrics.IncCounter(metrics.StockShortfallsTotal)
				}
			}
			// 把全部缺口明细放进Detail,客户端一次拿到完整清单
			return nil, &apperrors.AppError{
				Code:    apperrors.ErrCodeInsufficientStock,
				Message: "库存不足",
				Detail:  ins.Shortfalls,
				Err:     ins,
			}
		}
		uc.countResult("failure")
		return nil, err
	}

	// 4. 事务提交后的联动(不在原子段内,失败不影响已生效的订单)
	for _, line := range lowStock {
		if uc.replenisher != nil {
			_ = uc.replenisher.Trigger(ctx, line.isbn)
		}
		if uc.events != nil {
			_ = uc.events.Publish(mq.RoutingKeyStockLow, mq.StockLowEvent{
				ISBN:      line.isbn,
				Title:     line.title,
				Publisher: line.publisher,
				Stock:     line.remaining,
				Threshold: line.threshold,
			})
		}
	}

	if uc.events != nil {
		_ = uc.events.Publish(mq.RoutingKeyOrderCreated, mq.OrderCreatedEvent{
			OrderID:   newOrder.ID,
			OrderNo:   newOrder.OrderNo,
			UserID:    newOrder.UserID,
			Total:     newOrder.Total,
			CreatedAt: newOrder.CreatedAt,
		})
	}

	uc.countResult("success")
	if metrics.OrderAmount != nil {
		metrics.ObserveHistogram(metrics.OrderAmount, float64(newOrder.Total))
	}
	if metrics.CheckoutDuration != nil {
		metrics.ObserveHistogram(metrics.CheckoutDuration, time.Since(start).Seconds())
	}

	return toCheckoutResponse(newOrder), nil
}

func (uc *CheckoutUseCase) countResult(result string) {
	if metrics.CheckoutTotal != nil {
		metrics.IncCounterVec(metrics.CheckoutTotal, map[string]string{"result": result})
	}
}

func toCheckoutResponse(o *order.Order) *CheckoutResponse {
	items := make([]CheckoutItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = CheckoutItem{
			ISBN:     item.ISBN,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	return &CheckoutResponse{
		OrderID:   o.ID,
		OrderNo:   o.OrderNo,
		Total:     o.Total,
		TotalYuan: formatPrice(o.Total),
		Status:    o.Status.String(),
		Items:     items,
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
