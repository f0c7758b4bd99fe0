package purchase

import (
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// 采购领域错误定义
var (
	// ErrOrderNotFound 采购单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodePurchaseOrderNotFound, "采购单不存在")

	// ErrAlreadyConfirmed 采购单已确认(重复确认按无操作处理)
	ErrAlreadyConfirmed = apperrors.New(apperrors.ErrCodePurchaseTerminal, "采购单已确认")

	// ErrTerminalState 采购单已终态,不允许变更
	ErrTerminalState = apperrors.New(apperrors.ErrCodePurchaseTerminal, "采购单已终态，不允许此操作")
)
