package comment

import (
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// 评论领域错误定义
var (
	ErrCommentNotFound = apperrors.NotFound("评论不存在")
	ErrInvalidContent  = apperrors.Validation("评论内容长度应为1-1000个字符")
	ErrNotCommentOwner = apperrors.Forbidden("只能修改自己的评论")
	ErrParentMismatch  = apperrors.Validation("回复的评论不属于该书评")
)
