package book

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xiebiao/bookhub/internal/domain/book"
)

// ManageBookUseCase 图书上架、修改、下架用例(管理员)
// 设计说明:
// 1. 应用层负责用例编排,业务规则校验由领域服务负责
// 2. 输入输出使用DTO,与HTTP层解耦
// 3. 管理员权限由路由上的RequireRole中间件保证
type ManageBookUseCase struct {
	bookService book.Service
	authorRepo  book.AuthorRepository
	categories  book.CategoryRepository
}

// NewManageBookUseCase 创建图书管理用例
func NewManageBookUseCase(
	bookService book.Service,
	authorRepo book.AuthorRepository,
	categories book.CategoryRepository,
) *ManageBookUseCase {
	return &ManageBookUseCase{
		bookService: bookService,
		authorRepo:  authorRepo,
		categories:  categories,
	}
}

// Create 上架图书
func (uc *ManageBookUseCase) Create(ctx context.Context, req BookRequest) (*BookDTO, error) {
	b, err := uc.bookService.CreateBook(ctx, req.toInput())
	if err != nil {
		return nil, err
	}
	return toBookDTO(b), nil
}

// Update 修改图书,作者、分类整体替换
func (uc *ManageBookUseCase) Update(ctx context.Context, id uint, req BookRequest) (*BookDTO, error) {
	b, err := uc.bookService.UpdateBook(ctx, id, req.toInput())
	if err != nil {
		return nil, err
	}
	return toBookDTO(b), nil
}

// Delete 下架图书(软删除,历史订单不受影响)
func (uc *ManageBookUseCase) Delete(ctx context.Context, id uint) error {
	return uc.bookService.DeleteBook(ctx, id)
}

// CreateAuthor 新增作者
func (uc *ManageBookUseCase) CreateAuthor(ctx context.Context, name, bio string) (*AuthorDTO, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	a := &book.Author{Name: name, Bio: bio, CreatedAt: time.Now()}
	if err := uc.authorRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	dto := toAuthorDTO(*a)
	return &dto, nil
}

// CreateCategory 新增分类,名称唯一
func (uc *ManageBookUseCase) CreateCategory(ctx context.Context, name string) (*CategoryDTO, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	c := &book.Category{Name: name, CreatedAt: time.Now()}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	dto := toCategoryDTO(*c)
	return &dto, nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(name); n == 0 || n > 100 {
		return book.ErrInvalidName
	}
	return nil
}
