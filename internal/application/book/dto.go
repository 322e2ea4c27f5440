package book

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookhub/internal/domain/book"
)

// =========================================
// 应用层DTO(与HTTP层解耦)
// =========================================

// AuthorDTO 作者
type AuthorDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

// CategoryDTO 分类
type CategoryDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BookDTO 图书详情
type BookDTO struct {
	ID          uint            `json:"id"`
	ISBN        string          `json:"isbn"`
	Title       string          `json:"title"`
	Publisher   string          `json:"publisher"`
	Description string          `json:"description"`
	CoverURL    string          `json:"coverUrl"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Stock       int             `json:"stock"`
	AvgRating   float64         `json:"avgRating"`
	ReviewCount int             `json:"reviewCount"`
	Authors     []AuthorDTO     `json:"authors"`
	Categories  []CategoryDTO   `json:"categories"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BookRequest 上架/修改图书请求
type BookRequest struct {
	ISBN        string
	Title       string
	Publisher   string
	Description string
	CoverURL    string
	Price       decimal.Decimal
	Currency    string
	Stock       int
	AuthorIDs   []uint
	CategoryIDs []uint
}

func (r BookRequest) toInput() book.BookInput {
	return book.BookInput{
		ISBN:        r.ISBN,
		Title:       r.Title,
		Publisher:   r.Publisher,
		Description: r.Description,
		CoverURL:    r.CoverURL,
		Price:       r.Price,
		Currency:    r.Currency,
		Stock:       r.Stock,
		AuthorIDs:   r.AuthorIDs,
		CategoryIDs: r.CategoryIDs,
	}
}

func toAuthorDTO(a book.Author) AuthorDTO {
	return AuthorDTO{ID: a.ID, Name: a.Name, Bio: a.Bio}
}

func toCategoryDTO(c book.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

func toBookDTO(b *book.Book) *BookDTO {
	dto := &BookDTO{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Publisher:   b.Publisher,
		Description: b.Description,
		CoverURL:    b.CoverURL,
		Price:       b.Price,
		Currency:    b.Currency,
		Stock:       b.Stock,
		AvgRating:   b.AvgRating,
		ReviewCount: b.ReviewCount,
		Authors:     make([]AuthorDTO, len(b.Authors)),
		Categories:  make([]CategoryDTO, len(b.Categories)),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	for i, a := range b.Authors {
		dto.Authors[i] = toAuthorDTO(a)
	}
	for i, c := range b.Categories {
		dto.Categories[i] = toCategoryDTO(c)
	}
	return dto
}
