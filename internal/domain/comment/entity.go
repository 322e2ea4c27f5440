package comment

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength 评论最大字符数
const MaxContentLength = 1000

// Comment 书评下的评论,可通过ParentID嵌套回复
type Comment struct {
	ID        uint
	ReviewID  uint
	UserID    uint
	ParentID  *uint
	Content   string
	LikeCount int
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewComment 创建评论
func NewComment(reviewID, userID uint, parentID *uint, content string) (*Comment, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Comment{
		ReviewID:  reviewID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateContent 修改内容
func (c *Comment) UpdateContent(content string) error {
	if err := validateContent(content); err != nil {
		return err
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 是否为作者本人
func (c *Comment) IsOwnedBy(userID uint) bool {
	return c.UserID == userID
}

func validateContent(content string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(content))
	if n == 0 || n > MaxContentLength {
		return ErrInvalidContent
	}
	return nil
}
