package book

import (
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在或已下架
	ErrBookNotFound = apperrors.NotFound("图书不存在")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.Duplicate("ISBN号已存在")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.Validation("价格必须大于0")

	// ErrInvalidCurrency 币种不是三位字母代码
	ErrInvalidCurrency = apperrors.Validation("币种必须是ISO-4217三位字母代码")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.Validation("库存不能为负数")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.Validation("数量必须大于0")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.Unprocessable("库存不足")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.Validation("ISBN格式不正确")

	// ErrInvalidTitle 书名为空或过长
	ErrInvalidTitle = apperrors.Validation("书名长度应为1-200个字符")

	// ErrAuthorNotFound 作者不存在
	ErrAuthorNotFound = apperrors.NotFound("作者不存在")

	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = apperrors.NotFound("分类不存在")

	// ErrCategoryDuplicate 分类名已存在
	ErrCategoryDuplicate = apperrors.Duplicate("分类名已存在")

	// ErrInvalidName 作者名、分类名为空或过长
	ErrInvalidName = apperrors.Validation("名称长度应为1-100个字符")
)
