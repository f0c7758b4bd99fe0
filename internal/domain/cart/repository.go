package cart

import (
	"context"
)

// Repository 购物车仓储接口
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 购物车与用户1:1,查询不到时由仓储创建空车返回(GetOrCreate语义)
// 3. 支持事务操作(事务通过context传递),结账时清空购物车
//    与创建订单在同一事务中
type Repository interface {
	// GetOrCreate 获取用户购物车,不存在时创建空车
	GetOrCreate(ctx context.Context, userID uint) (*Cart, error)

	// Save 保存购物车(全量覆盖条目,更新updated_at)
	Save(ctx context.Context, cart *Cart) error

	// Clear 清空用户购物车条目
	Clear(ctx context.Context, userID uint) error
}
