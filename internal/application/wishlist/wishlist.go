package wishlist

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/internal/domain/wishlist"
)

// WishlistUseCase 心愿单用例,增删都是幂等的
type WishlistUseCase struct {
	wishlistRepo wishlist.Repository
	bookRepo     book.Repository
}

// NewWishlistUseCase 创建心愿单用例
func NewWishlistUseCase(wishlistRepo wishlist.Repository, bookRepo book.Repository) *WishlistUseCase {
	return &WishlistUseCase{
		wishlistRepo: wishlistRepo,
		bookRepo:     bookRepo,
	}
}

// ItemDTO 心愿单条目(附带图书摘要)
type ItemDTO struct {
	BookID    uint            `json:"bookId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
	AvgRating float64         `json:"avgRating"`
	InStock   bool            `json:"inStock"`
	AddedAt   time.Time       `json:"addedAt"`
}

// ListResponse 心愿单分页结果
type ListResponse struct {
	Items []ItemDTO
	Total int64
	Page  int
	Size  int
}

// Add 收藏图书,图书必须在售;重复收藏返回成功
func (uc *WishlistUseCase) Add(ctx context.Context, userID, bookID uint) error {
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return err
	}
	_, err := uc.wishlistRepo.Add(ctx, userID, bookID)
	return err
}

// Remove 取消收藏,未收藏也返回成功
func (uc *WishlistUseCase) Remove(ctx context.Context, userID, bookID uint) error {
	_, err := uc.wishlistRepo.Remove(ctx, userID, bookID)
	return err
}

// List 心愿单(最新收藏在前,已下架图书不展示)
func (uc *WishlistUseCase) List(ctx context.Context, userID uint, page, pageSize int) (*ListResponse, error) {
	p := shared.NewPage(page, pageSize)
	items, total, err := uc.wishlistRepo.List(ctx, userID, p.Page, p.Size)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.BookID
	}
	books, err := uc.bookRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	bookMap := make(map[uint]*book.Book, len(books))
	for _, b := range books {
		bookMap[b.ID] = b
	}

	resp := &ListResponse{Items: make([]ItemDTO, 0, len(items)), Total: total, Page: p.Page, Size: p.Size}
	for _, item := range items {
		b, ok := bookMap[item.BookID]
		if !ok {
			// 查询与下架之间的竞争窗口
			continue
		}
		resp.Items = append(resp.Items, ItemDTO{
			BookID:    b.ID,
			Title:     b.Title,
			Price:     b.Price,
			Currency:  b.Currency,
			AvgRating: b.AvgRating,
			InStock:   b.Stock > 0,
			AddedAt:   item.CreatedAt,
		})
	}
	return resp, nil
}
