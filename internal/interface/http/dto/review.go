package dto

// ReviewRequest 发表/修改书评
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5" example:"5"`
	Content string `json:"content" binding:"max=2000" example:"值得一读"`
}

// CommentRequest 发表评论
type CommentRequest struct {
	ParentID *uint  `json:"parentId" binding:"omitempty,min=1"`
	Content  string `json:"content" binding:"required,max=1000" example:"同意"`
}

// UpdateCommentRequest 修改评论
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}
