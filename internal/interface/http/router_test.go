package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookhub/internal/application/book"
	appcart "github.com/xiebiao/bookhub/internal/application/cart"
	appcomment "github.com/xiebiao/bookhub/internal/application/comment"
	apporder "github.com/xiebiao/bookhub/internal/application/order"
	appreview "github.com/xiebiao/bookhub/internal/application/review"
	appstats "github.com/xiebiao/bookhub/internal/application/stats"
	appuser "github.com/xiebiao/bookhub/internal/application/user"
	appwishlist "github.com/xiebiao/bookhub/internal/application/wishlist"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/user"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/infrastructure/messaging"
	apihttp "github.com/xiebiao/bookhub/internal/interface/http"
	"github.com/xiebiao/bookhub/internal/interface/http/handler"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/internal/testutil/memstore"
	"github.com/xiebiao/bookhub/pkg/jwt"
)

// memSessions 内存版会话与黑名单
type memSessions struct {
	mu        sync.Mutex
	blacklist map[string]bool
}

func (s *memSessions) SaveSession(context.Context, uint, map[string]interface{}, time.Duration) error {
	return nil
}

func (s *memSessions) DeleteSession(context.Context, uint) error { return nil }

func (s *memSessions) AddToBlacklist(_ context.Context, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[jti] = true
	return nil
}

func (s *memSessions) IsInBlacklist(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blacklist[jti], nil
}

type envelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Payload   json.RawMessage `json:"payload"`
	Status    int             `json:"status"`
	Code      string          `json:"code"`
	Path      string          `json:"path"`
	Details   json.RawMessage `json:"details"`
}

type testServer struct {
	t      *testing.T
	store  *memstore.Store
	engine *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := memstore.New()
	log := zap.NewNop()
	sessions := &memSessions{blacklist: map[string]bool{}}
	jwtManager := jwt.NewManager("test-secret", "bookhub", time.Hour, 24*time.Hour)
	events := messaging.Noop{}

	userService := user.NewServiceWithCost(s.Users(), bcrypt.MinCost)
	bookService := book.NewService(s.Books(), s.Authors(), s.Categories())
	ratings := appreview.NewRatingRecomputer(s, s.Reviews(), s.Books())

	handlers := apihttp.Handlers{
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService),
			appuser.NewLoginUseCase(userService, s, s.Tokens(), jwtManager, sessions, log),
			appuser.NewLogoutUseCase(s.Tokens(), sessions),
			appuser.NewRefreshTokenUseCase(s.Users(), s.Tokens(), s, jwtManager, sessions, log),
			appuser.NewProfileUseCase(userService, s.Users(), s.Tokens(), s, sessions, log),
		),
		Book: handler.NewBookHandler(
			appbook.NewManageBookUseCase(bookService, s.Authors(), s.Categories()),
			appbook.NewQueryBookUseCase(bookService, s.Authors(), s.Categories()),
		),
		Review: handler.NewReviewHandler(
			appreview.NewReviewUseCase(s, s.Reviews(), s.Books(), ratings),
			appcomment.NewCommentUseCase(s, s.Comments(), s.Reviews()),
		),
		Cart: handler.NewCartHandler(
			appcart.NewCartUseCase(s, s.Carts(), s.Books()),
			apporder.NewCheckoutUseCase(s, s.Carts(), s.Books(), s.Orders(), events, log),
			appwishlist.NewWishlistUseCase(s.Wishlist(), s.Books()),
		),
		Order: handler.NewOrderHandler(
			apporder.NewQueryOrderUseCase(s.Orders()),
			apporder.NewTransitionOrderUseCase(s, s.Orders(), s.Books(), events, log),
		),
		Stats: handler.NewStatsHandler(appstats.NewStatsUseCase(s.Stats())),
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		CORS: config.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders: []string{"Authorization", "Content-Type"},
		},
	}
	auth := middleware.NewAuthMiddleware(jwtManager, sessions)
	return &testServer{t: t, store: s, engine: apihttp.NewRouter(cfg, log, handlers, auth)}
}

func (ts *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (ts *testServer) decode(env envelope, out interface{}) {
	ts.t.Helper()
	require.NoError(ts.t, json.Unmarshal(env.Payload, out))
}

// signup 注册并登录，返回用户ID与Access Token
func (ts *testServer) signup(email string, role user.Role) (uint, string) {
	ts.t.Helper()
	code, env := ts.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": email, "password": "secret123", "nickname": "读者",
	})
	require.Equal(ts.t, http.StatusCreated, code)
	var info appuser.UserInfo
	ts.decode(env, &info)

	if role != user.RoleCustomer {
		ts.store.SetRole(info.ID, role)
	}

	code, env = ts.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(ts.t, http.StatusOK, code)
	var login appuser.LoginResponse
	ts.decode(env, &login)
	return info.ID, login.AccessToken
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	code, env := ts.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.IsSuccess)
}

func TestAuthGuards(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.signup("reader@example.com", user.RoleCustomer)

	t.Run("未登录", func(t *testing.T) {
		code, env := ts.do(http.MethodGet, "/api/v1/cart", "", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "UNAUTHORIZED", env.Code)
		assert.Equal(t, "/api/v1/cart", env.Path)
	})

	t.Run("Token无效", func(t *testing.T) {
		code, _ := ts.do(http.MethodGet, "/api/v1/users/me", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("非管理员访问后台", func(t *testing.T) {
		code, env := ts.do(http.MethodGet, "/api/v1/admin/orders", token, nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "FORBIDDEN", env.Code)
	})

	t.Run("登出后Token失效", func(t *testing.T) {
		code, _ := ts.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, code)
		code, _ = ts.do(http.MethodGet, "/api/v1/users/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestValidationEnvelope(t *testing.T) {
	ts := newTestServer(t)

	code, env := ts.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)

	var details []handler.FieldError
	require.NoError(t, json.Unmarshal(env.Details, &details))
	assert.NotEmpty(t, details)

	code, env = ts.do(http.MethodGet, "/api/v1/books/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
}

func TestCheckoutFlow(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.signup("admin@example.com", user.RoleAdmin)
	customerID, token := ts.signup("reader@example.com", user.RoleCustomer)

	// 1. 管理员上架
	code, env := ts.do(http.MethodPost, "/api/v1/admin/books", adminToken, gin.H{
		"isbn": "978-7-111-54742-6", "title": "Go程序设计语言", "price": "25.00", "currency": "CNY", "stock": 5,
	})
	require.Equal(t, http.StatusCreated, code, string(env.Payload))
	var b appbook.BookDTO
	ts.decode(env, &b)

	// 2. 加购两次，数量累加
	for i := 0; i < 2; i++ {
		code, _ = ts.do(http.MethodPost, "/api/v1/cart/items", token, gin.H{"bookId": b.ID, "quantity": 1})
		require.Equal(t, http.StatusOK, code)
	}
	code, env = ts.do(http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, code)
	var cartResp appcart.ListCartResponse
	ts.decode(env, &cartResp)
	require.Len(t, cartResp.Items, 1)
	assert.Equal(t, 2, cartResp.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(50).Equal(cartResp.Total))

	// 3. 结算
	code, env = ts.do(http.MethodPost, "/api/v1/cart/checkout", token, nil)
	require.Equal(t, http.StatusCreated, code)
	var checkout apporder.CheckoutResponse
	ts.decode(env, &checkout)
	assert.True(t, decimal.NewFromInt(50).Equal(checkout.TotalAmount))

	snapshot, _ := ts.store.BookSnapshot(b.ID)
	assert.Equal(t, 3, snapshot.Stock)

	// 4. 购物车已流转，再次结算没有ACTIVE购物车
	code, env = ts.do(http.MethodPost, "/api/v1/cart/checkout", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "RESOURCE_NOT_FOUND", env.Code)

	// 5. 本人与管理员都能查看订单
	path := "/api/v1/orders/" + jsonNumber(checkout.OrderID)
	code, env = ts.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, code)
	var o apporder.OrderDTO
	ts.decode(env, &o)
	assert.Equal(t, customerID, o.UserID)
	assert.Equal(t, "PENDING", o.Status)

	code, _ = ts.do(http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusOK, code)

	// 6. 管理员发货前必须先支付
	code, env = ts.do(http.MethodPatch, "/api/v1/admin/orders/"+jsonNumber(checkout.OrderID)+"/status", adminToken, gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", env.Code)

	// 7. 用户取消，库存回补
	code, _ = ts.do(http.MethodPost, path+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, code)
	snapshot, _ = ts.store.BookSnapshot(b.ID)
	assert.Equal(t, 5, snapshot.Stock)
}

func TestCheckoutInsufficientStockDetails(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.signup("admin@example.com", user.RoleAdmin)
	_, token := ts.signup("reader@example.com", user.RoleCustomer)

	code, env := ts.do(http.MethodPost, "/api/v1/admin/books", adminToken, gin.H{
		"isbn": "978-7-115-42806-5", "title": "三体", "price": "23.00", "currency": "CNY", "stock": 3,
	})
	require.Equal(t, http.StatusCreated, code)
	var b appbook.BookDTO
	ts.decode(env, &b)

	code, _ = ts.do(http.MethodPost, "/api/v1/cart/items", token, gin.H{"bookId": b.ID, "quantity": 3})
	require.Equal(t, http.StatusOK, code)

	// 加购之后库存被管理员调低
	code, _ = ts.do(http.MethodPut, "/api/v1/admin/books/"+jsonNumber(b.ID), adminToken, gin.H{
		"isbn": "978-7-115-42806-5", "title": "三体", "price": "23.00", "currency": "CNY", "stock": 1,
	})
	require.Equal(t, http.StatusOK, code)

	code, env = ts.do(http.MethodPost, "/api/v1/cart/checkout", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", env.Code)
	assert.NotEmpty(t, env.Details)
	assert.Zero(t, ts.store.OrderCount())
}

func TestReviewRoutes(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.signup("admin@example.com", user.RoleAdmin)
	_, token := ts.signup("reader@example.com", user.RoleCustomer)

	code, env := ts.do(http.MethodPost, "/api/v1/admin/books", adminToken, gin.H{
		"isbn": "978-7-121-31587-0", "title": "球状闪电", "price": "30.00", "currency": "CNY", "stock": 1,
	})
	require.Equal(t, http.StatusCreated, code)
	var b appbook.BookDTO
	ts.decode(env, &b)
	reviews := "/api/v1/books/" + jsonNumber(b.ID) + "/reviews"

	code, env = ts.do(http.MethodPost, reviews, token, gin.H{"rating": 4, "content": "好看"})
	require.Equal(t, http.StatusCreated, code)
	var r appreview.ReviewDTO
	ts.decode(env, &r)

	code, env = ts.do(http.MethodPost, reviews, token, gin.H{"rating": 5})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DUPLICATE_RESOURCE", env.Code)

	code, env = ts.do(http.MethodGet, "/api/v1/books/"+jsonNumber(b.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	var detail appbook.BookDTO
	ts.decode(env, &detail)
	assert.Equal(t, 4.0, detail.AvgRating)
	assert.Equal(t, 1, detail.ReviewCount)

	likes := "/api/v1/reviews/" + jsonNumber(r.ID) + "/likes"
	for i := 0; i < 2; i++ {
		code, env = ts.do(http.MethodPost, likes, token, nil)
		require.Equal(t, http.StatusOK, code)
	}
	var like appreview.LikeResponse
	ts.decode(env, &like)
	assert.Equal(t, 1, like.LikeCount, "重复点赞幂等")

	code, env = ts.do(http.MethodGet, reviews, "", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Total int64 `json:"total"`
	}
	ts.decode(env, &page)
	assert.Equal(t, int64(1), page.Total)
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
