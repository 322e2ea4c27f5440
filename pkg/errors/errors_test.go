package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"validation", Validation("bad"), http.StatusBadRequest, CodeValidationFailed},
		{"unauthorized", Unauthorized("who"), http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", Forbidden("no"), http.StatusForbidden, CodeForbidden},
		{"not found", NotFound("gone"), http.StatusNotFound, CodeNotFound},
		{"duplicate", Duplicate("twice"), http.StatusConflict, CodeDuplicate},
		{"unprocessable", Unprocessable("stock"), http.StatusUnprocessableEntity, CodeUnprocessable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.Status)
			assert.Equal(t, tc.code, tc.err.Code)
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(cause, "查询%s失败", "图书")

	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, CodeInternal, err.Code)
	assert.Equal(t, "查询图书失败", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithDetailsKeepsIdentity(t *testing.T) {
	sentinel := Unprocessable("库存不足")
	detailed := sentinel.WithDetails(map[string]int{"bookId": 1})

	assert.Nil(t, sentinel.Details, "原错误不应被修改")
	assert.NotNil(t, detailed.Details)
	assert.ErrorIs(t, detailed, sentinel)
	assert.ErrorIs(t, fmt.Errorf("checkout: %w", detailed), sentinel)
	assert.NotErrorIs(t, detailed, Unprocessable("购物车为空"))
}

func TestGetAppError(t *testing.T) {
	t.Run("AppError原样返回", func(t *testing.T) {
		src := NotFound("订单不存在")
		assert.Same(t, src, GetAppError(fmt.Errorf("wrap: %w", src)))
	})

	t.Run("普通错误包装为Internal", func(t *testing.T) {
		got := GetAppError(errors.New("boom"))
		assert.Equal(t, CodeInternal, got.Code)
		assert.Equal(t, http.StatusInternalServerError, got.Status)
	})

	t.Run("IsCode", func(t *testing.T) {
		assert.True(t, IsCode(Duplicate("x"), CodeDuplicate))
		assert.False(t, IsCode(errors.New("x"), CodeDuplicate))
	})
}
