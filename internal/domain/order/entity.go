package order

import (
	"time"
)

// Status 订单状态
// 设计说明:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 状态值1-5递增,便于理解流转方向
type Status int

const (
	StatusPending    Status = 1 // 待处理
	StatusProcessing Status = 2 // 处理中
	StatusShipped    Status = 3 // 已发货
	StatusDelivered  Status = 4 // 已送达
	StatusCancelled  Status = 5 // 已取消
)

// String 实现Stringer接口(方便日志输出)
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "待处理"
	case StatusProcessing:
		return "处理中"
	case StatusShipped:
		return "已发货"
	case StatusDelivered:
		return "已送达"
	case StatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// ParseStatus 解析状态码
func ParseStatus(code int) (Status, bool) {
	s := Status(code)
	return s, s >= StatusPending && s <= StatusCancelled
}

// Order 客户订单实体(聚合根)
// 设计说明:
// 1. 订单一经创建不可变,唯一允许变化的是Status
// 2. 明细行的单价是下单时刻的快照:之后改价不影响历史订单
// 3. Total在下单时计算一次并落库,永不根据实时价格重算
// 4. 订单创建后不再引用购物车,两者没有任何关联
type Order struct {
	ID              uint
	OrderNo         string // 订单号(业务主键,全局唯一)
	UserID          uint   // 买家用户ID
	Total           int64  // 订单总金额(分),= Σ(数量×快照单价),只算一次
	Status          Status
	ShippingAddress string // 收货地址
	Notes           string // 买家备注
	CardRef         string // 脱敏卡号(仅保留后4位,模拟支付网关的留痕)
	Items           []Item // 订单明细(聚合内的子实体)
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item 订单明细项
// 设计说明:
// 1. 不是独立聚合根,必须通过Order访问
// 2. Price是下单时刻的单价快照,防止改价后历史订单金额变化
// 3. 同时保存BookID和ISBN:BookID用于关联查询,ISBN用于补货和退库
type Item struct {
	ID       uint
	OrderID  uint
	BookID   uint
	ISBN     string
	Title    string // 书名快照(图书下架后订单仍可读)
	Quantity int
	Price    int64 // 下单时的单价(分)
}

// NewOrder 创建新订单(工厂方法)
// 初始状态显式设置为Pending,总金额在此处计算一次,不依赖任何
// 数据库默认值,也不信任调用方传入的金额
func NewOrder(orderNo string, userID uint, items []Item, shippingAddress, notes, cardRef string) *Order {
	now := time.Now()
	o := &Order{
		OrderNo:         orderNo,
		UserID:          userID,
		Status:          StatusPending,
		ShippingAddress: shippingAddress,
		Notes:           notes,
		CardRef:         cardRef,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	o.Total = o.calculateTotal()
	return o
}

// calculateTotal 根据明细快照价计算总金额
func (o *Order) calculateTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// CanTransitionTo 检查是否可以转换到目标状态
// 状态机:
//
//	待处理 → 处理中 → 已发货 → 已送达(终态)
//	待处理/处理中 → 已取消(终态)
//
// 已发货之后不允许取消
func (o *Order) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered},
		StatusDelivered:  {}, // 终态
		StatusCancelled:  {}, // 终态
	}

	allowed, exists := transitions[o.Status]
	if !exists {
		return false
	}

	for _, a := range allowed {
		if a == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// CanBeCancelled 是否还允许取消(仅限待处理/处理中)
func (o *Order) CanBeCancelled() bool {
	return o.CanTransitionTo(StatusCancelled)
}

// Cancel 取消订单(领域行为)
// 注意:取消订单必须同时把每行的数量退回库存台账,
// 该编排由应用层在同一事务内完成
func (o *Order) Cancel() error {
	return o.TransitionTo(StatusCancelled)
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
