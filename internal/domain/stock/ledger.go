package stock

import (
	"context"
	"fmt"
	"strings"
)

// Ledger 库存台账
// 设计说明:
// 1. 图书的Stock字段是库存的唯一事实来源,所有增减必须经过Ledger
// 2. TryDecrement是检查+扣减的原子操作:库存不足时不做任何修改
// 3. Increment只有两个调用方:采购单确认、客户订单取消
// 4. 两个方法都必须在调用方的事务内执行(事务通过context传递),
//    同一ISBN的并发扣减由数据库行锁串行化,保证库存永不为负
type Ledger interface {
	// TryDecrement 尝试扣减库存
	// 成功时返回扣减后的剩余库存(用于补货阈值判断)
	// 库存不足时返回*InsufficientError,不做任何修改
	TryDecrement(ctx context.Context, isbn string, qty int) (remaining int, err error)

	// Increment 增加库存(无上限),返回增加后的库存
	Increment(ctx context.Context, isbn string, qty int) (newStock int, err error)
}

// Shortfall 一条缺货明细
// 下单失败时逐行返回,客户端一次拿到完整的缺货清单
type Shortfall struct {
	ISBN      string `json:"isbn"`
	Requested int    `json:"requested"` // 请求数量
	Available int    `json:"available"` // 当前可售数量
}

// InsufficientError 库存不足错误
// 设计说明:
// 1. 携带所有缺货行,而不是遇到第一行就返回
// 2. 下单用例会把多行的InsufficientError合并后整体返回
type InsufficientError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientError) Error() string {
	parts := make([]string, len(e.Shortfalls))
	for i, s := range e.Shortfalls {
		parts[i] = fmt.Sprintf("%s(需要%d,剩余%d)", s.ISBN, s.Requested, s.Available)
	}
	return "库存不足: " + strings.Join(parts, "; ")
}

// Merge 合并另一个库存不足错误的缺货行
func (e *InsufficientError) Merge(other *InsufficientError) {
	e.Shortfalls = append(e.Shortfalls, other.Shortfalls...)
}

// NewInsufficientError 创建单行库存不足错误
func NewInsufficientError(isbn string, requested, available int) *InsufficientError {
	return &InsufficientError{
		Shortfalls: []Shortfall{{ISBN: isbn, Requested: requested, Available: available}},
	}
}
