package cart

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/cart"
	"github.com/xiebiao/bookmall/internal/infrastructure/persistence/redis"
)

// AddItemUseCase 加入购物车用例
// 设计说明:
// 1. 同一ISBN重复加入时数量合并,不产生重复行(实体内保证)
// 2. 库存只做建议性提示,加购物车永远不因库存不足失败
//    (真正的校验在结账事务里)
// 3. 购物车写操作后失效Redis缓存
type AddItemUseCase struct {
	cartRepo  cart.Repository
	bookRepo  book.Repository
	cartCache *redis.CartCache
}

// NewAddItemUseCase 创建加购用例
func NewAddItemUseCase(cartRepo cart.Repository, bookRepo book.Repository, cartCache *redis.CartCache) *AddItemUseCase {
	return &AddItemUseCase{
		cartRepo:  cartRepo,
		bookRepo:  bookRepo,
		cartCache: cartCache,
	}
}

// AddItemRequest 加购请求DTO
type AddItemRequest struct {
	UserID   uint
	ISBN     string
	Quantity int // <1时按1处理
}

// AddItemResponse 加购响应DTO
type AddItemResponse struct {
	ISBN     string `json:"isbn"`
	Quantity int    `json:"quantity"` // 合并后的数量
	Stock    int    `json:"stock"`    // 当前库存(建议性)
	Warning  string `json:"warning,omitempty"`
}

// Execute 执行加购
func (uc *AddItemUseCase) Execute(ctx context.Context, req AddItemRequest) (*AddItemResponse, error) {
	// 1. 商品必须存在(下架的书加不进购物车)
	b, err := uc.bookRepo.FindByISBN(ctx, req.ISBN)
	if err != nil {
		return nil, err
	}

	// 2. 取出(或创建)购物车,合并数量
	c, err := uc.cartRepo.GetOrCreate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	c.AddItem(req.ISBN, req.Quantity)

	if err := uc.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	// 3. 失效缓存(失败不影响主流程)
	_ = uc.cartCache.Invalidate(ctx, req.UserID)

	// 合并后的数量
	merged := 0
	for _, item := range c.Items {
		if item.ISBN == req.ISBN {
			merged = item.Quantity
			break
		}
	}

	resp := &AddItemResponse{
		ISBN:     req.ISBN,
		Quantity: merged,
		Stock:    b.Stock,
	}
	if b.Stock < merged {
		resp.Warning = "当前库存可能不足,结账时以实际库存为准"
	}
	return resp, nil
}
