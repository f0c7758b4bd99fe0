package purchase

import (
	"time"
)

// Status 采购单状态
type Status int

const (
	StatusPending   Status = 1 // 待确认
	StatusConfirmed Status = 2 // 已确认(终态)
	StatusCancelled Status = 3 // 已取消(终态)
)

// String 实现Stringer接口
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "待确认"
	case StatusConfirmed:
		return "已确认"
	case StatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// Order 出版社采购单实体(聚合根)
// 设计说明:
// 1. 库存跌破补货阈值时由补货引擎创建,按出版社聚合:
//    聚合窗口内同一出版社的多次触发合并到同一张待确认采购单,
//    同一ISBN重复触发只累加数量,不产生重复行
// 2. Confirmed是库存增加的唯一入口(除订单取消退库外):
//    确认时逐行调用库存台账Increment并盖确认时间戳
// 3. Confirmed/Cancelled都是终态,之后不允许任何变更
type Order struct {
	ID          uint
	PONo        string // 采购单号(业务主键)
	Publisher   string // 出版社名称(聚合键)
	Status      Status
	Items       []Item
	ConfirmedAt *time.Time // 确认时间戳(仅Confirmed有值)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item 采购单明细行
// UnitCost是触发补货时刻图书进货价的快照
type Item struct {
	ID              uint
	PurchaseOrderID uint
	BookID          uint
	ISBN            string
	Title           string // 书名快照
	Quantity        int    // 请求补货数量
	UnitCost        int64  // 进货单价快照(分)
}

// NewOrder 创建新采购单(工厂方法),初始状态显式设为Pending
func NewOrder(poNo, publisher string) *Order {
	now := time.Now()
	return &Order{
		PONo:      poNo,
		Publisher: publisher,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddOrBumpItem 追加明细行;同一ISBN已存在时累加数量
func (o *Order) AddOrBumpItem(item Item) error {
	if o.Status != StatusPending {
		return ErrTerminalState
	}
	for i := range o.Items {
		if o.Items[i].ISBN == item.ISBN {
			o.Items[i].Quantity += item.Quantity
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	item.PurchaseOrderID = o.ID
	o.Items = append(o.Items, item)
	o.UpdatedAt = time.Now()
	return nil
}

// Confirm 确认采购单
// 幂等规则:
// - Pending → Confirmed,盖确认时间戳
// - 已经Confirmed → 返回ErrAlreadyConfirmed,调用方按无操作成功处理
// - Cancelled → 终态,拒绝
func (o *Order) Confirm(now time.Time) error {
	switch o.Status {
	case StatusConfirmed:
		return ErrAlreadyConfirmed
	case StatusCancelled:
		return ErrTerminalState
	}
	o.Status = StatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	return nil
}

// Cancel 取消采购单(仅限Pending,无任何库存影响)
func (o *Order) Cancel() error {
	if o.Status != StatusPending {
		return ErrTerminalState
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}

// IsOpen 判断采购单在给定聚合窗口内是否仍接受合并
// window<=0表示窗口不限时:只要还是Pending就一直吸收新的触发
func (o *Order) IsOpen(window time.Duration, now time.Time) bool {
	if o.Status != StatusPending {
		return false
	}
	if window <= 0 {
		return true
	}
	return now.Sub(o.CreatedAt) <= window
}
