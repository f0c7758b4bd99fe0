package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,包含图书的核心属性
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. ISBN作为业务唯一标识(数据库层保证唯一性),建档后不可变
// 4. Stock是库存的唯一事实来源,增减只能走stock.Ledger,任何时刻>=0
// 5. ReorderThreshold是补货阈值:扣减后库存低于该值会触发向出版社补货
type Book struct {
	ID               uint
	ISBN             string // ISBN号(国际标准书号)
	Title            string // 书名
	Author           string // 作者
	Publisher        string // 出版社(补货聚合键)
	Price            int64  // 售价(单位:分,1元=100分)
	CostPrice        int64  // 进货单价(分),补货单行的成本快照来源
	Stock            int    // 库存数量
	ReorderThreshold int    // 补货阈值(库存低于该值触发补货)
	CoverURL         string // 封面图片URL
	Description      string // 图书描述
	OwnerID          uint   // 发布者用户ID(关联User表)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewBook 创建新图书(工厂方法)
// isbn需调用方先验证格式;price、costPrice单位为分
func NewBook(isbn, title, author, publisher string, price, costPrice int64, stock, reorderThreshold int, coverURL, description string, ownerID uint) *Book {
	now := time.Now()
	return &Book{
		ISBN:             isbn,
		Title:            title,
		Author:           author,
		Publisher:        publisher,
		Price:            price,
		CostPrice:        costPrice,
		Stock:            stock,
		ReorderThreshold: reorderThreshold,
		CoverURL:         coverURL,
		Description:      description,
		OwnerID:          ownerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// UpdatePrice 更新售价(领域行为)
// 业务规则:价格必须>0;历史订单的成交价不受影响(下单时已快照)
func (b *Book) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateReorderThreshold 更新补货阈值
func (b *Book) UpdateReorderThreshold(threshold int) error {
	if threshold < 0 {
		return ErrInvalidThreshold
	}
	b.ReorderThreshold = threshold
	b.UpdatedAt = time.Now()
	return nil
}

// NeedsReplenishment 判断给定库存水位是否需要补货
// 注意是严格小于:库存恰好等于阈值时不触发
func (b *Book) NeedsReplenishment(stockLevel int) bool {
	return stockLevel < b.ReorderThreshold
}

// UpdateInfo 更新图书基本信息
func (b *Book) UpdateInfo(title, author, publisher, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.OwnerID == userID
}
