// Package memstore 内存版仓储实现,供应用层测试使用
//
// 设计说明:
// 1. 所有仓储共享一个Store,Transaction期间整体串行(相当于SERIALIZABLE隔离)
// 2. fn返回error时把全部数据恢复到事务开始前的快照
// 3. 模拟数据库唯一约束(邮箱、ISBN、(用户,图书)书评、ACTIVE购物车、订单cart_id)
// 4. 读写都复制实体,调用方修改返回值不会影响存储
package memstore

import (
	"context"
	"sync"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/cart"
	"github.com/xiebiao/bookhub/internal/domain/comment"
	"github.com/xiebiao/bookhub/internal/domain/order"
	"github.com/xiebiao/bookhub/internal/domain/review"
	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/internal/domain/stats"
	"github.com/xiebiao/bookhub/internal/domain/user"
	"github.com/xiebiao/bookhub/internal/domain/wishlist"
)

type txKey struct{}

// pair 复合主键
type pair [2]uint

// state 全部表数据
type state struct {
	seq          map[string]uint
	users        map[uint]*user.User
	tokens       map[uint]*user.RefreshToken
	books        map[uint]*book.Book
	authors      map[uint]book.Author
	categories   map[uint]book.Category
	reviews      map[uint]*review.Review
	reviewLikes  map[pair]struct{}
	comments     map[uint]*comment.Comment
	commentLikes map[pair]struct{}
	wishlist     map[pair]*wishlist.Item
	carts        map[uint]*cart.Cart
	cartItems    map[pair]*cart.Item
	orders       map[uint]*order.Order
}

func newState() *state {
	return &state{
		seq:          map[string]uint{},
		users:        map[uint]*user.User{},
		tokens:       map[uint]*user.RefreshToken{},
		books:        map[uint]*book.Book{},
		authors:      map[uint]book.Author{},
		categories:   map[uint]book.Category{},
		reviews:      map[uint]*review.Review{},
		reviewLikes:  map[pair]struct{}{},
		comments:     map[uint]*comment.Comment{},
		commentLikes: map[pair]struct{}{},
		wishlist:     map[pair]*wishlist.Item{},
		carts:        map[uint]*cart.Cart{},
		cartItems:    map[pair]*cart.Item{},
		orders:       map[uint]*order.Order{},
	}
}

func (st *state) clone() *state {
	c := newState()
	for k, v := range st.seq {
		c.seq[k] = v
	}
	for k, v := range st.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range st.tokens {
		t := *v
		c.tokens[k] = &t
	}
	for k, v := range st.books {
		c.books[k] = copyBook(v)
	}
	for k, v := range st.authors {
		c.authors[k] = v
	}
	for k, v := range st.categories {
		c.categories[k] = v
	}
	for k, v := range st.reviews {
		r := *v
		c.reviews[k] = &r
	}
	for k := range st.reviewLikes {
		c.reviewLikes[k] = struct{}{}
	}
	for k, v := range st.comments {
		cm := *v
		c.comments[k] = &cm
	}
	for k := range st.commentLikes {
		c.commentLikes[k] = struct{}{}
	}
	for k, v := range st.wishlist {
		w := *v
		c.wishlist[k] = &w
	}
	for k, v := range st.carts {
		ct := *v
		c.carts[k] = &ct
	}
	for k, v := range st.cartItems {
		it := *v
		c.cartItems[k] = &it
	}
	for k, v := range st.orders {
		c.orders[k] = copyOrder(v)
	}
	return c
}

func (st *state) nextID(table string) uint {
	st.seq[table]++
	return st.seq[table]
}

// Store 内存数据库
type Store struct {
	txMu   sync.Mutex // 串行化事务
	mu     sync.Mutex // 保护st与faults
	st     *state
	faults map[string]error
}

// New 创建空的内存数据库
func New() *Store {
	return &Store{st: newState(), faults: map[string]error{}}
}

var _ shared.TxManager = (*Store)(nil)

// Transaction 执行事务,嵌套调用复用外层事务
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// InjectFault 让名为op的仓储方法下次调用返回err(仅一次),用于验证事务回滚
// op形如"book.UpdateStock"
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// fault 必须在持有mu时调用
func (s *Store) fault(op string) error {
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}

// with 在锁内访问数据
func (s *Store) with(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// withFault 先检查注入的故障再访问数据
func (s *Store) withFault(op string, fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fault(op); err != nil {
		return err
	}
	return fn(s.st)
}

// 各仓储访问入口
func (s *Store) Users() user.Repository              { return &userRepo{s} }
func (s *Store) Tokens() user.TokenRepository        { return &tokenRepo{s} }
func (s *Store) Books() book.Repository              { return &bookRepo{s} }
func (s *Store) Authors() book.AuthorRepository      { return &authorRepo{s} }
func (s *Store) Categories() book.CategoryRepository { return &categoryRepo{s} }
func (s *Store) Reviews() review.Repository          { return &reviewRepo{s} }
func (s *Store) Comments() comment.Repository        { return &commentRepo{s} }
func (s *Store) Wishlist() wishlist.Repository       { return &wishlistRepo{s} }
func (s *Store) Carts() cart.Repository              { return &cartRepo{s} }
func (s *Store) Orders() order.Repository            { return &orderRepo{s} }
func (s *Store) Stats() stats.Repository             { return &statsRepo{s} }

// paginate 对已排序的结果切片分页
func paginate[T any](all []T, page, size int) []T {
	p := shared.NewPage(page, size)
	start := p.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := start + p.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func copyUser(u *user.User) *user.User {
	c := *u
	return &c
}

func copyBook(b *book.Book) *book.Book {
	c := *b
	c.Authors = append([]book.Author(nil), b.Authors...)
	c.Categories = append([]book.Category(nil), b.Categories...)
	return &c
}

func copyOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = append([]order.OrderItem(nil), o.Items...)
	return &c
}
