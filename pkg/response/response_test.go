package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.GET("/api/v1/test", h)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestSuccess(t *testing.T) {
	w := perform(t, func(c *gin.Context) {
		Success(c, gin.H{"id": 7})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["isSuccess"])
	assert.Equal(t, "success", body["message"])
	assert.Equal(t, float64(7), body["payload"].(map[string]any)["id"])
}

func TestError(t *testing.T) {
	t.Run("业务错误带details", func(t *testing.T) {
		w := perform(t, func(c *gin.Context) {
			Error(c, apperrors.Unprocessable("库存不足").WithDetails(gin.H{"bookId": 1}))
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "/api/v1/test", body.Path)
		assert.Equal(t, http.StatusUnprocessableEntity, body.Status)
		assert.Equal(t, apperrors.CodeUnprocessable, body.Code)
		assert.Equal(t, "库存不足", body.Message)
		assert.NotEmpty(t, body.Timestamp)
		assert.NotNil(t, body.Details)
	})

	t.Run("内部错误不泄露原因", func(t *testing.T) {
		w := perform(t, func(c *gin.Context) {
			Error(c, errors.New("dial tcp 10.0.0.1:3306: refused"))
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "10.0.0.1")
		assert.Contains(t, w.Body.String(), apperrors.CodeInternal)
	})
}

func TestNewPageData(t *testing.T) {
	p := NewPageData([]int{1, 2}, 21, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPageData(nil, 0, 1, 10).TotalPages)
}
