package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmall/internal/domain/order"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单(GORM通过foreignKey自动保存关联的Items)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}

	return nil
}

// FindByID 根据ID查找订单(含明细)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := dbFromContext(ctx, r.db).Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := dbFromContext(ctx, r.db).Preload("Items").Where("order_no = ?", orderNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// UpdateStatus 更新订单状态
// 订单创建后唯一可变的是Status;明细永不更新
func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	result := dbFromContext(ctx, r.db).Model(&OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":     int(o.Status),
			"updated_at": o.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}

	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

// ListByUserID 查询用户的订单列表(分页,含明细)
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	db := dbFromContext(ctx, r.db)
	query := db.Model(&OrderModel{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i, model := range models {
		orders[i] = toOrderEntity(&model)
	}

	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:       item.ID,
			OrderID:  item.OrderID,
			BookID:   item.BookID,
			ISBN:     item.ISBN,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	return &OrderModel{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		UserID:          o.UserID,
		Total:           o.Total,
		Status:          int(o.Status),
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		CardRef:         o.CardRef,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.Item, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.Item{
			ID:       item.ID,
			OrderID:  item.OrderID,
			BookID:   item.BookID,
			ISBN:     item.ISBN,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	return &order.Order{
		ID:              model.ID,
		OrderNo:         model.OrderNo,
		UserID:          model.UserID,
		Total:           model.Total,
		Status:          order.Status(model.Status),
		ShippingAddress: model.ShippingAddress,
		Notes:           model.Notes,
		CardRef:         model.CardRef,
		Items:           items,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}
