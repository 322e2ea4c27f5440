package book

import (
	"context"

	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/shared"
)

// QueryBookUseCase 图书浏览用例(公开接口)
type QueryBookUseCase struct {
	bookService book.Service
	authorRepo  book.AuthorRepository
	categories  book.CategoryRepository
}

// NewQueryBookUseCase 创建图书查询用例
func NewQueryBookUseCase(
	bookService book.Service,
	authorRepo book.AuthorRepository,
	categories book.CategoryRepository,
) *QueryBookUseCase {
	return &QueryBookUseCase{
		bookService: bookService,
		authorRepo:  authorRepo,
		categories:  categories,
	}
}

// ListBooksRequest 图书列表查询
type ListBooksRequest struct {
	Page       int
	PageSize   int
	Keyword    string
	CategoryID uint
	AuthorID   uint
	SortBy     string
}

// ListBooksResponse 图书分页结果
type ListBooksResponse struct {
	Books []BookDTO
	Total int64
	Page  int
	Size  int
}

// ListAuthorsResponse 作者分页结果
type ListAuthorsResponse struct {
	Authors []AuthorDTO
	Total   int64
	Page    int
	Size    int
}

// List 分页查询在售图书
// 排序方式非法时按最新上架排序
func (uc *QueryBookUseCase) List(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	page := shared.NewPage(req.Page, req.PageSize)
	switch req.SortBy {
	case book.SortNewest, book.SortPriceAsc, book.SortPriceDesc, book.SortRatingDesc:
	default:
		req.SortBy = book.SortNewest
	}

	books, total, err := uc.bookService.ListBooks(ctx, book.ListParams{
		Page:       page.Page,
		PageSize:   page.Size,
		Keyword:    req.Keyword,
		CategoryID: req.CategoryID,
		AuthorID:   req.AuthorID,
		SortBy:     req.SortBy,
	})
	if err != nil {
		return nil, err
	}

	resp := &ListBooksResponse{
		Books: make([]BookDTO, len(books)),
		Total: total,
		Page:  page.Page,
		Size:  page.Size,
	}
	for i, b := range books {
		resp.Books[i] = *toBookDTO(b)
	}
	return resp, nil
}

// Get 图书详情,已下架返回ErrBookNotFound
func (uc *QueryBookUseCase) Get(ctx context.Context, id uint) (*BookDTO, error) {
	b, err := uc.bookService.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookDTO(b), nil
}

// ListAuthors 作者列表
func (uc *QueryBookUseCase) ListAuthors(ctx context.Context, page, pageSize int) (*ListAuthorsResponse, error) {
	p := shared.NewPage(page, pageSize)
	authors, total, err := uc.authorRepo.List(ctx, p.Page, p.Size)
	if err != nil {
		return nil, err
	}
	resp := &ListAuthorsResponse{Authors: make([]AuthorDTO, len(authors)), Total: total, Page: p.Page, Size: p.Size}
	for i, a := range authors {
		resp.Authors[i] = toAuthorDTO(a)
	}
	return resp, nil
}

// ListCategories 全部分类(数量有限,不分页)
func (uc *QueryBookUseCase) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := uc.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		out[i] = toCategoryDTO(c)
	}
	return out, nil
}
