package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookmall/internal/domain/purchase"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// purchaseRepository 采购单仓储实现(MySQL)
// 设计说明:
// 1. LockOpenByPublisher使用行锁(SELECT FOR UPDATE),
//    保证同一出版社的并发补货触发不会各自开新单
// 2. Save需要处理明细的插入和数量更新(合并触发时明细会变化)
// 3. 事务通过context传递
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository 创建采购单仓储
func NewPurchaseRepository(db *gorm.DB) purchase.Repository {
	return &purchaseRepository{db: db}
}

// Create 创建采购单
func (r *purchaseRepository) Create(ctx context.Context, po *purchase.Order) error {
	model := toPurchaseModel(po)

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建采购单失败")
	}

	po.ID = model.ID
	for i := range po.Items {
		po.Items[i].ID = model.Items[i].ID
		po.Items[i].PurchaseOrderID = model.ID
	}

	return nil
}

// FindByID 根据ID查找采购单(含明细)
func (r *purchaseRepository) FindByID(ctx context.Context, id uint) (*purchase.Order, error) {
	var model PurchaseOrderModel
	err := dbFromContext(ctx, r.db).Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, purchase.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询采购单失败")
	}

	return toPurchaseEntity(&model), nil
}

// LockByID 悲观锁查找采购单(必须在事务内调用)
func (r *purchaseRepository) LockByID(ctx context.Context, id uint) (*purchase.Order, error) {
	var model PurchaseOrderModel
	err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, purchase.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "锁定采购单失败")
	}

	return toPurchaseEntity(&model), nil
}

// LockOpenByPublisher 锁定指定出版社在合并窗口内的待确认采购单
// 必须在事务中调用;没有符合条件的单时返回ErrOrderNotFound,
// 调用方据此创建新单
func (r *purchaseRepository) LockOpenByPublisher(ctx context.Context, publisher string, since time.Time) (*purchase.Order, error) {
	var model PurchaseOrderModel
	err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("publisher = ? AND status = ? AND created_at >= ?",
			publisher, int(purchase.StatusPending), since).
		Order("created_at DESC").
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, purchase.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "锁定采购单失败")
	}

	return toPurchaseEntity(&model), nil
}

// Save 保存采购单(状态变更、明细新增/数量变更)
func (r *purchaseRepository) Save(ctx context.Context, po *purchase.Order) error {
	db := dbFromContext(ctx, r.db)

	err := db.Model(&PurchaseOrderModel{}).
		Where("id = ?", po.ID).
		Updates(map[string]interface{}{
			"status":       int(po.Status),
			"confirmed_at": po.ConfirmedAt,
			"updated_at":   po.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新采购单失败")
	}

	// 明细: (采购单ID, ISBN)唯一,冲突时累加数量
	for i := range po.Items {
		item := &po.Items[i]
		model := PurchaseOrderItemModel{
			ID:              item.ID,
			PurchaseOrderID: po.ID,
			BookID:          item.BookID,
			ISBN:            item.ISBN,
			Title:           item.Title,
			Quantity:        item.Quantity,
			UnitCost:        item.UnitCost,
		}

		if model.ID == 0 {
			err = db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "purchase_order_id"}, {Name: "isbn"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"quantity": item.Quantity}),
			}).Create(&model).Error
			if err != nil {
				return apperrors.Wrap(err, "保存采购单明细失败")
			}
			item.ID = model.ID
			item.PurchaseOrderID = po.ID
		} else {
			err = db.Model(&PurchaseOrderItemModel{}).
				Where("id = ?", model.ID).
				Update("quantity", model.Quantity).Error
			if err != nil {
				return apperrors.Wrap(err, "更新采购单明细失败")
			}
		}
	}

	return nil
}

// List 查询采购单列表(分页,status=0表示不过滤)
func (r *purchaseRepository) List(ctx context.Context, status purchase.Status, page, pageSize int) ([]*purchase.Order, int64, error) {
	var models []PurchaseOrderModel
	var total int64

	query := dbFromContext(ctx, r.db).Model(&PurchaseOrderModel{})
	if status != 0 {
		query = query.Where("status = ?", int(status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询采购单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询采购单列表失败")
	}

	orders := make([]*purchase.Order, len(models))
	for i, model := range models {
		orders[i] = toPurchaseEntity(&model)
	}

	return orders, total, nil
}

// toPurchaseModel 领域实体 → GORM模型
func toPurchaseModel(po *purchase.Order) *PurchaseOrderModel {
	items := make([]PurchaseOrderItemModel, len(po.Items))
	for i, item := range po.Items {
		items[i] = PurchaseOrderItemModel{
			ID:              item.ID,
			PurchaseOrderID: item.PurchaseOrderID,
			BookID:          item.BookID,
			ISBN:            item.ISBN,
			Title:           item.Title,
			Quantity:        item.Quantity,
			UnitCost:        item.UnitCost,
		}
	}

	return &PurchaseOrderModel{
		ID:          po.ID,
		PONo:        po.PONo,
		Publisher:   po.Publisher,
		Status:      int(po.Status),
		ConfirmedAt: po.ConfirmedAt,
		Items:       items,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}
}

// toPurchaseEntity GORM模型 → 领域实体
func toPurchaseEntity(model *PurchaseOrderModel) *purchase.Order {
	items := make([]purchase.Item, len(model.Items))
	for i, item := range model.Items {
		items[i] = purchase.Item{
			ID:              item.ID,
			PurchaseOrderID: item.PurchaseOrderID,
			BookID:          item.BookID,
			ISBN:            item.ISBN,
			Title:           item.Title,
			Quantity:        item.Quantity,
			UnitCost:        item.UnitCost,
		}
	}

	return &purchase.Order{
		ID:          model.ID,
		PONo:        model.PONo,
		Publisher:   model.Publisher,
		Status:      purchase.Status(model.Status),
		ConfirmedAt: model.ConfirmedAt,
		Items:       items,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
