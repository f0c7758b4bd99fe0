package mysql

import (
	"context"

	"gorm.io/gorm"
)

// txKey 事务在context中的键(非导出类型,避免与其他包的键冲突)
type txKey struct{}

// TxManager 事务管理器
// 设计说明:
// 1. 封装GORM的Transaction方法,fn返回error时自动ROLLBACK,返回nil时自动COMMIT
// 2. 通过context传递事务DB(避免全局变量),Repository的getDB从context提取
// 3. 结账是典型用法:锁库存、扣减、建订单、清购物车在同一事务,
//    任何一步失败整体回滚,库存不会出现半扣状态
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn函数内的所有Repository操作都会在同一事务中执行
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

// dbFromContext 从context提取事务DB,没有事务时返回fallback
// 所有Repository共用,保证同一事务内的操作落在同一连接上
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
