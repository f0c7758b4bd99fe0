package mq

import "time"

// 路由键约定：<聚合>.<动作>
// 订阅方可用通配符按聚合订阅（如 stock.*、order.*）
const (
	RoutingKeyOrderCreated   = "order.created"
	RoutingKeyOrderCancelled = "order.cancelled"
	RoutingKeyStockLow       = "stock.low"
	RoutingKeyPurchaseOpened = "purchase.opened"
	RoutingKeyPurchaseClosed = "purchase.closed"
)

// OrderCreatedEvent 下单成功事件
type OrderCreatedEvent struct {
	OrderID   uint      `json:"order_id"`
	OrderNo   string    `json:"order_no"`
	UserID    uint      `json:"user_id"`
	Total     int64     `json:"total"` // 单位：分
	CreatedAt time.Time `json:"created_at"`
}

// OrderCancelledEvent 订单取消事件（库存已回补）
type OrderCancelledEvent struct {
	OrderID     uint      `json:"order_id"`
	OrderNo     string    `json:"order_no"`
	UserID      uint      `json:"user_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// StockLowEvent 库存低于补货阈值事件
type StockLowEvent struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

// PurchaseOrderOpenedEvent 采购单开立事件
type PurchaseOrderOpenedEvent struct {
	PurchaseOrderID uint   `json:"purchase_order_id"`
	PONo            string `json:"po_no"`
	Publisher       string `json:"publisher"`
}

// PurchaseOrderClosedEvent 采购单终结事件（确认或取消）
type PurchaseOrderClosedEvent struct {
	PurchaseOrderID uint   `json:"purchase_order_id"`
	PONo            string `json:"po_no"`
	Publisher       string `json:"publisher"`
	Status          int    `json:"status"` // 2=已确认 3=已取消
}
