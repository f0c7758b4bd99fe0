package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
// 3. 库存的增减不在此接口:必须走stock.Ledger
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByISBN 根据ISBN查找图书
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// Update 更新图书信息(不含库存)
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书(软删除)
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByISBN 悲观锁查询图书(SELECT FOR UPDATE)
	// 下单时按ISBN升序逐本锁定,防止并发超卖和交叉加锁死锁
	// 必须在事务内调用(事务通过context传递)
	LockByISBN(ctx context.Context, isbn string) (*Book, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(搜索标题、作者、出版社)
	SortBy   string // 排序字段(price_asc, price_desc, created_at_desc)
}
