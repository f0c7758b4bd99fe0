package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/stock"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// stockLedger 库存台账实现(MySQL)
// 教学要点:防超卖的核心实现
//
// 错误实现(先查后改):
//  1. SELECT stock → 1
//  2. 判断够不够 → 够
//  3. UPDATE stock = stock - 1
//     两个并发请求都通过了步骤2,最后一本书卖出两次
//
// 本实现:条件UPDATE + RowsAffected判定
//  1. UPDATE books SET stock = stock - ? WHERE isbn = ? AND stock >= ?
//     单条语句在行锁保护下原子执行,不满足条件的请求影响0行
//  2. RowsAffected=0 → 再查一次区分"图书不存在"和"库存不足",
//     库存不足时把当前可售数量带给调用方
//  3. 事务内随后SELECT读到的是本事务修改后的值(扣减后水位),
//     调用方拿它做补货阈值判断
//
// 结账用例会先按ISBN升序FOR UPDATE锁行再调用TryDecrement,
// 此时条件UPDATE在已持有的锁内执行;单独调用时条件UPDATE自身
// 的行锁同样保证同一ISBN的扣减串行化,两种路径都不会超卖
type stockLedger struct {
	db *gorm.DB
}

// NewStockLedger 创建库存台账
func NewStockLedger(db *gorm.DB) stock.Ledger {
	return &stockLedger{db: db}
}

// TryDecrement 尝试扣减库存
func (l *stockLedger) TryDecrement(ctx context.Context, isbn string, qty int) (int, error) {
	if qty <= 0 {
		return 0, book.ErrInvalidQuantity
	}

	db := dbFromContext(ctx, l.db)

	result := db.Model(&BookModel{}).
		Where("isbn = ?", isbn).
		Where("stock >= ?", qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "扣减库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是图书不存在,或者库存不足,再查一次区分
		var model BookModel
		if err := db.Where("isbn = ?", isbn).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, book.ErrBookNotFound
			}
			return 0, apperrors.Wrap(err, "查询图书失败")
		}
		return 0, stock.NewInsufficientError(isbn, qty, model.Stock)
	}

	// 读取扣减后的水位(事务内可见本事务的修改)
	var model BookModel
	if err := db.Select("stock").Where("isbn = ?", isbn).First(&model).Error; err != nil {
		return 0, apperrors.Wrap(err, "查询扣减后库存失败")
	}

	return model.Stock, nil
}

// Increment 增加库存(无上限)
// 调用方:采购单确认、客户订单取消
func (l *stockLedger) Increment(ctx context.Context, isbn string, qty int) (int, error) {
	if qty <= 0 {
		return 0, book.ErrInvalidQuantity
	}

	db := dbFromContext(ctx, l.db)

	result := db.Model(&BookModel{}).
		Where("isbn = ?", isbn).
		Update("stock", gorm.Expr("stock + ?", qty))

	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "增加库存失败")
	}

	if result.RowsAffected == 0 {
		return 0, book.ErrBookNotFound
	}

	var model BookModel
	if err := db.Select("stock").Where("isbn = ?", isbn).First(&model).Error; err != nil {
		return 0, apperrors.Wrap(err, "查询增加后库存失败")
	}

	return model.Stock, nil
}
