package review

import (
	"time"
	"unicode/utf8"
)

// 评论内容约束
const (
	MinRating        = 1
	MaxRating        = 5
	MaxContentLength = 2000
)

// Review 书评(聚合根)
// 设计说明:
// 1. 每个(用户, 图书)只能有一条书评,唯一索引同时覆盖已删除的行
// 2. LikeCount/CommentCount是冗余计数,必须与点赞行、评论行在同一事务中变化
// 3. 删除为软删除,同时删除点赞行并触发图书评分重算
type Review struct {
	ID           uint
	UserID       uint
	BookID       uint
	Rating       int
	Content      string
	LikeCount    int
	CommentCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewReview 创建书评(工厂方法,校验评分与内容)
func NewReview(userID, bookID uint, rating int, content string) (*Review, error) {
	if err := validate(rating, content); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Review{
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update 修改评分与内容,返回评分是否发生变化
func (r *Review) Update(rating int, content string) (bool, error) {
	if err := validate(rating, content); err != nil {
		return false, err
	}
	changed := r.Rating != rating
	r.Rating = rating
	r.Content = content
	r.UpdatedAt = time.Now()
	return changed, nil
}

// IsOwnedBy 是否为作者本人
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// IsDeleted 是否已删除
func (r *Review) IsDeleted() bool {
	return r.DeletedAt != nil
}

func validate(rating int, content string) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// RatingSummary 某本图书未删除书评的聚合
type RatingSummary struct {
	Count int
	Avg   float64 // 无书评时为0
}
