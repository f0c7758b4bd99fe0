package cart

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/cart"
	"github.com/xiebiao/bookmall/internal/infrastructure/persistence/redis"
)

// UpdateItemUseCase 修改购物车条目数量用例
// 覆盖数量(非累加);数量<1时按1处理;条目不存在时报错
type UpdateItemUseCase struct {
	cartRepo  cart.Repository
	cartCache *redis.CartCache
}

// NewUpdateItemUseCase 创建修改数量用例
func NewUpdateItemUseCase(cartRepo cart.Repository, cartCache *redis.CartCache) *UpdateItemUseCase {
	return &UpdateItemUseCase{cartRepo: cartRepo, cartCache: cartCache}
}

// UpdateItemRequest 修改数量请求DTO
type UpdateItemRequest struct {
	UserID   uint
	ISBN     string
	Quantity int
}

// Execute 执行修改数量
func (uc *UpdateItemUseCase) Execute(ctx context.Context, req UpdateItemRequest) error {
	c, err := uc.cartRepo.GetOrCreate(ctx, req.UserID)
	if err != nil {
		return err
	}

	if err := c.SetQuantity(req.ISBN, req.Quantity); err != nil {
		return err
	}

	if err := uc.cartRepo.Save(ctx, c); err != nil {
		return err
	}

	_ = uc.cartCache.Invalidate(ctx, req.UserID)
	return nil
}

// RemoveItemUseCase 删除购物车条目用例
type RemoveItemUseCase struct {
	cartRepo  cart.Repository
	cartCache *redis.CartCache
}

// NewRemoveItemUseCase 创建删除条目用例
func NewRemoveItemUseCase(cartRepo cart.Repository, cartCache *redis.CartCache) *RemoveItemUseCase {
	return &RemoveItemUseCase{cartRepo: cartRepo, cartCache: cartCache}
}

// Execute 执行删除条目
func (uc *RemoveItemUseCase) Execute(ctx context.Context, userID uint, isbn string) error {
	c, err := uc.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	if err := c.RemoveItem(isbn); err != nil {
		return err
	}

	if err := uc.cartRepo.Save(ctx, c); err != nil {
		return err
	}

	_ = uc.cartCache.Invalidate(ctx, userID)
	return nil
}
