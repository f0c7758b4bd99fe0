package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookmall/internal/domain/book"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
// 4. 库存增减不在此仓储:唯一入口是同包的stockLedger
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := dbFromContext(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := dbFromContext(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := dbFromContext(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// Update 更新图书信息
// 注意:不更新Stock列,避免覆盖台账的并发扣减结果
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := dbFromContext(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"title":             b.Title,
			"author":            b.Author,
			"publisher":         b.Publisher,
			"price":             b.Price,
			"cost_price":        b.CostPrice,
			"reorder_threshold": b.ReorderThreshold,
			"cover_url":         b.CoverURL,
			"description":       b.Description,
			"updated_at":        b.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// Delete 删除图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFromContext(ctx, r.db).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	query := dbFromContext(ctx, r.db).Model(&BookModel{})

	// 关键词搜索(搜索标题、作者、出版社)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR publisher LIKE ?", keyword, keyword, keyword)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	switch params.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	offset := (params.Page - 1) * params.PageSize
	query = query.Limit(params.PageSize).Offset(offset)

	if err := query.Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i, model := range models {
		books[i] = toBookEntity(&model)
	}

	return books, total, nil
}

// LockByISBN 悲观锁查询图书(SELECT FOR UPDATE)
// 必须在事务内调用:行锁随事务提交或回滚释放
// 两个并发结账请求对同一ISBN的锁请求在这里串行化
func (r *bookRepository) LockByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("isbn = ?", isbn).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}

	return toBookEntity(&model), nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toBookModel 领域实体 → GORM模型
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:               b.ID,
		ISBN:             b.ISBN,
		Title:            b.Title,
		Author:           b.Author,
		Publisher:        b.Publisher,
		Price:            b.Price,
		CostPrice:        b.CostPrice,
		Stock:            b.Stock,
		ReorderThreshold: b.ReorderThreshold,
		CoverURL:         b.CoverURL,
		Description:      b.Description,
		OwnerID:          b.OwnerID,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:               model.ID,
		ISBN:             model.ISBN,
		Title:            model.Title,
		Author:           model.Author,
		Publisher:        model.Publisher,
		Price:            model.Price,
		CostPrice:        model.CostPrice,
		Stock:            model.Stock,
		ReorderThreshold: model.ReorderThreshold,
		CoverURL:         model.CoverURL,
		Description:      model.Description,
		OwnerID:          model.OwnerID,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}
