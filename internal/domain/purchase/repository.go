package purchase

import (
	"context"
	"time"
)

// Repository 采购单仓储接口
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建采购单(包含明细行)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找采购单(包含明细行)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// LockByID 悲观锁查找采购单
	// 确认/取消必须在事务内行锁该单:并发的两次确认只有一次
	// 真正入库,幂等保证依赖这把锁
	LockByID(ctx context.Context, id uint) (*Order, error)

	// LockOpenByPublisher 悲观锁查询出版社在since之后创建的待确认采购单
	// 补货触发按出版社聚合:必须在事务内行锁该单,
	// 防止并发触发为同一出版社开出多张单
	// 没有符合条件的单时返回ErrOrderNotFound
	LockOpenByPublisher(ctx context.Context, publisher string, since time.Time) (*Order, error)

	// Save 保存采购单(状态、确认时间戳、明细行的新增与数量变更)
	Save(ctx context.Context, order *Order) error

	// List 分页查询采购单(status=0表示不过滤)
	List(ctx context.Context, status Status, page, pageSize int) ([]*Order, int64, error)
}
