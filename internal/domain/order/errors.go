package order

import (
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.NotFound("订单不存在")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.Unprocessable("订单状态不允许此操作")

	// ErrInvalidStatus 未知的订单状态
	ErrInvalidStatus = apperrors.Validation("无效的订单状态")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.Unprocessable("订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.Validation("购买数量必须大于0")

	// ErrNotOrderOwner 不是订单所有者
	ErrNotOrderOwner = apperrors.Forbidden("无权访问该订单")

	// ErrCartAlreadyOrdered 购物车已生成过订单(cart_id唯一索引冲突)
	ErrCartAlreadyOrdered = apperrors.Unprocessable("购物车已结算")
)
