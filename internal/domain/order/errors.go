package order

import (
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单状态不允许此操作")

	// ErrCancelAfterShipped 已发货订单不允许取消
	ErrCancelAfterShipped = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单已发货，不能取消")

	// ErrExpiredPayment 支付卡已过期
	ErrExpiredPayment = apperrors.New(apperrors.ErrCodeExpiredPayment, "支付卡已过期")

	// ErrInvalidCard 卡号或有效期格式不正确
	ErrInvalidCard = apperrors.New(apperrors.ErrCodeInvalidParams, "卡号或有效期格式不正确")

	// ErrUnauthorized 无权操作此订单
	ErrUnauthorized = apperrors.New(apperrors.ErrCodeForbidden, "无权操作此订单")
)
