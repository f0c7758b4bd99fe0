package cart

import (
	"context"
	"fmt"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/cart"
	"github.com/xiebiao/bookmall/internal/infrastructure/persistence/redis"
)

// GetCartUseCase 查询购物车用例
// 设计说明:
// 1. 每行带当前库存和insufficient标记,纯属建议性提示:
//    购物车里的数量可以超过库存,结账时才真正校验
// 2. 渲染结果进Redis缓存(短TTL),写操作主动失效
type GetCartUseCase struct {
	cartRepo  cart.Repository
	bookRepo  book.Repository
	cartCache *redis.CartCache
}

// NewGetCartUseCase 创建查询购物车用例
func NewGetCartUseCase(cartRepo cart.Repository, bookRepo book.Repository, cartCache *redis.CartCache) *GetCartUseCase {
	return &GetCartUseCase{
		cartRepo:  cartRepo,
		bookRepo:  bookRepo,
		cartCache: cartCache,
	}
}

// CartLine 购物车行DTO
type CartLine struct {
	ISBN         string `json:"isbn"`
	Title        string `json:"title"`
	Price        int64  `json:"price"` // 当前售价(分),结账时以快照为准
	Quantity     int    `json:"quantity"`
	Stock        int    `json:"stock"`        // 当前库存(建议性)
	Insufficient bool   `json:"insufficient"` // 库存可能不足
	Subtotal     int64  `json:"subtotal"`     // price*quantity(分)
}

// GetCartResponse 购物车响应DTO
type GetCartResponse struct {
	Items     []CartLine `json:"items"`
	Total     int64      `json:"total"` // 按当前售价估算的总额(分)
	TotalYuan string     `json:"total_yuan"`
	UpdatedAt string     `json:"updated_at"`
}

// Execute 执行查询购物车
func (uc *GetCartUseCase) Execute(ctx context.Context, userID uint) (*GetCartResponse, error) {
	// 1. 读缓存
	var cached GetCartResponse
	if hit, err := uc.cartCache.Get(ctx, userID, &cached); err == nil && hit {
		return &cached, nil
	}

	// 2. 查库渲染
	c, err := uc.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &GetCartResponse{
		Items:     make([]CartLine, 0, len(c.Items)),
		UpdatedAt: c.UpdatedAt.Format("2006-01-02 15:04:05"),
	}

	for _, item := range c.Items {
		line := CartLine{
			ISBN:     item.ISBN,
			Quantity: item.Quantity,
		}

		b, err := uc.bookRepo.FindByISBN(ctx, item.ISBN)
		if err == nil {
			line.Title = b.Title
			line.Price = b.Price
			line.Stock = b.Stock
			line.Insufficient = b.Stock < item.Quantity
			line.Subtotal = b.Price * int64(item.Quantity)
			resp.Total += line.Subtotal
		} else {
			// 书已下架:行保留,标记不可购买
			line.Insufficient = true
		}

		resp.Items = append(resp.Items, line)
	}

	resp.TotalYuan = fmt.Sprintf("%.2f", float64(resp.Total)/100.0)

	// 3. 回填缓存(失败不影响主流程)
	_ = uc.cartCache.Set(ctx, userID, resp)

	return resp, nil
}
