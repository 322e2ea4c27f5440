package cart

import (
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrCartNotFound 没有ACTIVE购物车
	ErrCartNotFound = apperrors.NotFound("购物车不存在")

	// ErrCartItemNotFound 购物车中没有该图书
	ErrCartItemNotFound = apperrors.NotFound("购物车中没有该图书")

	// ErrInvalidQuantity 数量越界
	ErrInvalidQuantity = apperrors.Validation("数量必须在1-999之间")

	// ErrInsufficientStock 数量超过库存
	ErrInsufficientStock = apperrors.Unprocessable("库存不足")

	// ErrCartEmpty 空购物车不能结算
	ErrCartEmpty = apperrors.Unprocessable("购物车为空")

	// ErrBookUnavailable 购物车中的图书已下架
	ErrBookUnavailable = apperrors.Unprocessable("图书已下架")

	// ErrCurrencyMismatch 购物车中存在多个币种
	ErrCurrencyMismatch = apperrors.Unprocessable("购物车中的图书币种不一致")

	// ErrItemConflict 并发插入同一购物车行
	ErrItemConflict = apperrors.Duplicate("购物车行已存在")
)

// StockDetails 库存不足时的错误详情
type StockDetails struct {
	BookID    uint `json:"bookId"`
	Requested int  `json:"requested"`
	Available int  `json:"available"`
}
