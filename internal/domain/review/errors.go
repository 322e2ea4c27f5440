package review

import (
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// 书评领域错误定义
var (
	ErrReviewNotFound  = apperrors.NotFound("书评不存在")
	ErrReviewDuplicate = apperrors.Duplicate("已经评价过该图书")
	ErrInvalidRating   = apperrors.Validation("评分必须在1-5之间")
	ErrContentTooLong  = apperrors.Validation("内容不能超过2000个字符")
	ErrNotReviewOwner  = apperrors.Forbidden("只能修改自己的书评")
)
