package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单(包含订单明细,必须在同一事务中)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus 更新订单状态(订单创建后唯一可变的字段)
	UpdateStatus(ctx context.Context, order *Order) error

	// ListByUserID 查询用户的订单列表(分页,含明细)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)
}
