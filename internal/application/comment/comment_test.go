package comment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcomment "github.com/xiebiao/bookhub/internal/application/comment"
	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/review"
	"github.com/xiebiao/bookhub/internal/testutil/memstore"
)

func setup(t *testing.T) (*memstore.Store, *appcomment.CommentUseCase, *review.Review) {
	t.Helper()
	s := memstore.New()
	r, err := review.NewReview(1, 1, 4, "")
	require.NoError(t, err)
	require.NoError(t, s.Reviews().Create(context.Background(), r))
	return s, appcomment.NewCommentUseCase(s, s.Comments(), s.Reviews()), r
}

func commentCount(t *testing.T, s *memstore.Store, reviewID uint) int {
	t.Helper()
	r, err := s.Reviews().FindByID(context.Background(), reviewID)
	require.NoError(t, err)
	return r.CommentCount
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()
	s, uc, r := setup(t)

	c, err := uc.Create(ctx, appcomment.CreateCommentRequest{UserID: 2, ReviewID: r.ID, Content: "同意"})
	require.NoError(t, err)
	assert.Equal(t, 1, commentCount(t, s, r.ID))

	reply, err := uc.Create(ctx, appcomment.CreateCommentRequest{UserID: 1, ReviewID: r.ID, ParentID: &c.ID, Content: "谢谢"})
	require.NoError(t, err)
	assert.Equal(t, c.ID, *reply.ParentID)
	assert.Equal(t, 2, commentCount(t, s, r.ID))

	t.Run("空内容", func(t *testing.T) {
		_, err := uc.Create(ctx, appcomment.CreateCommentRequest{UserID: 2, ReviewID: r.ID, Content: "   "})
		assert.ErrorIs(t, err, comment.ErrInvalidContent)
	})

	t.Run("父评论属于其他书评", func(t *testing.T) {
		other, err := review.NewReview(3, 2, 5, "")
		require.NoError(t, err)
		require.NoError(t, s.Reviews().Create(ctx, other))

		_, err = uc.Create(ctx, appcomment.CreateCommentRequest{UserID: 2, ReviewID: other.ID, ParentID: &c.ID, Content: "串楼"})
		assert.ErrorIs(t, err, comment.ErrParentMismatch)
		assert.Zero(t, commentCount(t, s, other.ID))
	})

	t.Run("书评已删除", func(t *testing.T) {
		require.NoError(t, s.Reviews().SoftDelete(ctx, r.ID))
		_, err := uc.Create(ctx, appcomment.CreateCommentRequest{UserID: 2, ReviewID: r.ID, Content: "还在吗"})
		assert.ErrorIs(t, err, review.ErrReviewNotFound)
	})
}

func TestUpdateAndDeleteComment(t *testing.T) {
	ctx := context.Background()
	s, uc, r := setup(t)
	c, err := uc.Create(ctx, appcomment.CreateCommentRequest{UserID: 2, ReviewID: r.ID, Content: "初稿"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, 3, c.ID, "篡改")
	assert.ErrorIs(t, err, comment.ErrNotCommentOwner)

	updated, err := uc.Update(ctx, 2, c.ID, "定稿")
	require.NoError(t, err)
	assert.Equal(t, "定稿", updated.Content)

	_, err = uc.Like(ctx, 5, c.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, 3, c.ID), comment.ErrNotCommentOwner)
	require.NoError(t, uc.Delete(ctx, 2, c.ID))
	assert.Zero(t, commentCount(t, s, r.ID))
	assert.ErrorIs(t, uc.Delete(ctx, 2, c.ID), comment.ErrCommentNotFound)

	list, err := uc.ListByReview(ctx, r.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestCommentLikes(t *testing.T) {
	ctx := context.Background()
	_, uc, r := setup(t)
	c, err := uc.Create(ctx, appcomment.CreateCommentRequest{UserID: 2, ReviewID: r.ID, Content: "顶"})
	require.NoError(t, err)

	resp, err := uc.Like(ctx, 3, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LikeCount)

	resp, err = uc.Like(ctx, 3, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LikeCount)

	resp, err = uc.Unlike(ctx, 4, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LikeCount)

	resp, err = uc.Unlike(ctx, 3, c.ID)
	require.NoError(t, err)
	assert.Zero(t, resp.LikeCount)
	assert.False(t, resp.Liked)
}
