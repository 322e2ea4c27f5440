package handler

import (
	"github.com/gin-gonic/gin"

	appcomment "github.com/xiebiao/bookhub/internal/application/comment"
	appreview "github.com/xiebiao/bookhub/internal/application/review"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/response"
)

// ReviewHandler 书评、评论与点赞
type ReviewHandler struct {
	reviewUseCase  *appreview.ReviewUseCase
	commentUseCase *appcomment.CommentUseCase
}

// NewReviewHandler 创建书评处理器
func NewReviewHandler(reviewUseCase *appreview.ReviewUseCase, commentUseCase *appcomment.CommentUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase:  reviewUseCase,
		commentUseCase: commentUseCase,
	}
}

// ListReviews 图书的书评列表
// @Summary      书评列表
// @Tags         书评
// @Produce      json
// @Param        id path int true "图书ID"
// @Param        page query int false "页码"
// @Param        size query int false "每页数量"
// @Success      200 {object} response.Response{payload=response.PageData{list=[]appreview.ReviewDTO}}
// @Router       /api/v1/books/{id}/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.reviewUseCase.ListByBook(c.Request.Context(), bookID, q.Page, q.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Reviews, result.Total, result.Page, result.Size)
}

// CreateReview 发表书评（每人每本书一条），同一事务内重算图书评分
// @Summary      发表书评
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.ReviewRequest true "评分与内容"
// @Success      201 {object} response.Response{payload=appreview.ReviewDTO}
// @Failure      404 {object} response.ErrorResponse "图书不存在"
// @Failure      409 {object} response.ErrorResponse "已评论过该图书"
// @Router       /api/v1/books/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	bookID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.reviewUseCase.Create(c.Request.Context(), appreview.CreateReviewRequest{
		UserID:  middleware.GetUserID(c),
		BookID:  bookID,
		Rating:  req.Rating,
		Content: req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateReview 修改书评（仅作者本人）
// @Summary      修改书评
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Param        request body dto.ReviewRequest true "评分与内容"
// @Success      200 {object} response.Response{payload=appreview.ReviewDTO}
// @Failure      403 {object} response.ErrorResponse "不是本人的书评"
// @Router       /api/v1/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.reviewUseCase.Update(c.Request.Context(), appreview.UpdateReviewRequest{
		UserID:   middleware.GetUserID(c),
		ReviewID: reviewID,
		Rating:   req.Rating,
		Content:  req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteReview 删除书评（仅作者本人）
// @Summary      删除书评
// @Tags         书评
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reviewUseCase.Delete(c.Request.Context(), middleware.GetUserID(c), reviewID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// LikeReview 点赞书评（幂等）
// @Summary      点赞书评
// @Tags         书评
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response{payload=appreview.LikeResponse}
// @Router       /api/v1/reviews/{id}/likes [post]
func (h *ReviewHandler) LikeReview(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.reviewUseCase.Like(c.Request.Context(), middleware.GetUserID(c), reviewID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UnlikeReview 取消点赞（幂等）
// @Summary      取消点赞书评
// @Tags         书评
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response{payload=appreview.LikeResponse}
// @Router       /api/v1/reviews/{id}/likes [delete]
func (h *ReviewHandler) UnlikeReview(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.reviewUseCase.Unlike(c.Request.Context(), middleware.GetUserID(c), reviewID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// =========================================
// 评论
// =========================================

// ListComments 书评下的评论
// @Summary      评论列表
// @Tags         评论
// @Produce      json
// @Param        id path int true "书评ID"
// @Param        page query int false "页码"
// @Param        size query int false "每页数量"
// @Success      200 {object} response.Response{payload=response.PageData{list=[]appcomment.CommentDTO}}
// @Router       /api/v1/reviews/{id}/comments [get]
func (h *ReviewHandler) ListComments(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.commentUseCase.ListByReview(c.Request.Context(), reviewID, q.Page, q.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Comments, result.Total, result.Page, result.Size)
}

// CreateComment 发表评论，parentId必须是同一书评下的评论
// @Summary      发表评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Param        request body dto.CommentRequest true "评论内容"
// @Success      201 {object} response.Response{payload=appcomment.CommentDTO}
// @Router       /api/v1/reviews/{id}/comments [post]
func (h *ReviewHandler) CreateComment(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.commentUseCase.Create(c.Request.Context(), appcomment.CreateCommentRequest{
		UserID:   middleware.GetUserID(c),
		ReviewID: reviewID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateComment 修改评论（仅作者本人）
// @Summary      修改评论
// @Tags         评论
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Param        request body dto.UpdateCommentRequest true "评论内容"
// @Success      200 {object} response.Response{payload=appcomment.CommentDTO}
// @Router       /api/v1/comments/{id} [put]
func (h *ReviewHandler) UpdateComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.commentUseCase.Update(c.Request.Context(), middleware.GetUserID(c), commentID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteComment 删除评论（仅作者本人）
// @Summary      删除评论
// @Tags         评论
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/comments/{id} [delete]
func (h *ReviewHandler) DeleteComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.commentUseCase.Delete(c.Request.Context(), middleware.GetUserID(c), commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// LikeComment 点赞评论（幂等）
// @Summary      点赞评论
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response{payload=appcomment.LikeResponse}
// @Router       /api/v1/comments/{id}/likes [post]
func (h *ReviewHandler) LikeComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.commentUseCase.Like(c.Request.Context(), middleware.GetUserID(c), commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UnlikeComment 取消点赞评论（幂等）
// @Summary      取消点赞评论
// @Tags         评论
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "评论ID"
// @Success      200 {object} response.Response{payload=appcomment.LikeResponse}
// @Router       /api/v1/comments/{id}/likes [delete]
func (h *ReviewHandler) UnlikeComment(c *gin.Context) {
	commentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.commentUseCase.Unlike(c.Request.Context(), middleware.GetUserID(c), commentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
