package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmall/internal/domain/cart"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// cartRepository 购物车仓储实现(MySQL)
// 设计说明:
// 1. 购物车与用户1:1(user_id唯一索引)
// 2. Save采用"全量覆盖"策略:先删后插条目,再更新updated_at;
//    购物车条目数量小,全量覆盖比逐行diff简单且不易出错
// 3. 事务通过context传递(结账清空购物车与创建订单同一事务)
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// GetOrCreate 获取用户购物车,不存在时创建空车
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uint) (*cart.Cart, error) {
	db := dbFromContext(ctx, r.db)

	var model CartModel
	err := db.Preload("Items").Where("user_id = ?", userID).First(&model).Error

	if err == nil {
		return toCartEntity(&model), nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}

	// 首次访问:建空车
	c := cart.NewCart(userID)
	model = CartModel{
		UserID:    c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if err := db.Create(&model).Error; err != nil {
		// 并发首次访问可能撞唯一索引,撞了就读已有的
		if isDuplicateError(err) {
			if err := db.Preload("Items").Where("user_id = ?", userID).First(&model).Error; err != nil {
				return nil, apperrors.Wrap(err, "查询购物车失败")
			}
			return toCartEntity(&model), nil
		}
		return nil, apperrors.Wrap(err, "创建购物车失败")
	}

	c.ID = model.ID
	return c, nil
}

// Save 保存购物车(全量覆盖条目)
func (r *cartRepository) Save(ctx context.Context, c *cart.Cart) error {
	db := dbFromContext(ctx, r.db)

	// 1. 删除旧条目
	if err := db.Where("cart_id = ?", c.ID).Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "保存购物车失败")
	}

	// 2. 插入当前条目
	if len(c.Items) > 0 {
		items := make([]CartItemModel, len(c.Items))
		for i, item := range c.Items {
			items[i] = CartItemModel{
				CartID:   c.ID,
				ISBN:     item.ISBN,
				Quantity: item.Quantity,
			}
		}
		if err := db.Create(&items).Error; err != nil {
			return apperrors.Wrap(err, "保存购物车条目失败")
		}
		for i := range c.Items {
			c.Items[i].ID = items[i].ID
			c.Items[i].CartID = c.ID
		}
	}

	// 3. 更新时间戳
	if err := db.Model(&CartModel{}).Where("id = ?", c.ID).
		Update("updated_at", c.UpdatedAt).Error; err != nil {
		return apperrors.Wrap(err, "更新购物车失败")
	}

	return nil
}

// Clear 清空用户购物车条目
func (r *cartRepository) Clear(ctx context.Context, userID uint) error {
	db := dbFromContext(ctx, r.db)

	var model CartModel
	err := db.Where("user_id = ?", userID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // 没有购物车等价于已清空
		}
		return apperrors.Wrap(err, "查询购物车失败")
	}

	if err := db.Where("cart_id = ?", model.ID).Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "清空购物车失败")
	}

	if err := db.Model(&CartModel{}).Where("id = ?", model.ID).
		Update("updated_at", gorm.Expr("NOW()")).Error; err != nil {
		return apperrors.Wrap(err, "更新购物车失败")
	}

	return nil
}

// toCartEntity GORM模型 → 领域实体
func toCartEntity(model *CartModel) *cart.Cart {
	items := make([]cart.Item, len(model.Items))
	for i, item := range model.Items {
		items[i] = cart.Item{
			ID:       item.ID,
			CartID:   item.CartID,
			ISBN:     item.ISBN,
			Quantity: item.Quantity,
		}
	}

	return &cart.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		Items:     items,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
