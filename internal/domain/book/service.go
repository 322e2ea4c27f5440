package book

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验(作者、分类必须存在)
// 2. 不依赖具体的Repository实现(依赖倒置)
// 3. 管理员权限由接口层中间件保证,这里不再校验角色
type Service interface {
	// CreateBook 上架图书
	// 业务规则:
	// - ISBN格式合法(10位或13位数字)且不重复
	// - 价格>0,币种为三位字母,库存>=0
	// - 作者、分类ID必须全部存在
	CreateBook(ctx context.Context, input BookInput) (*Book, error)

	// UpdateBook 更新图书信息(规则同CreateBook),作者、分类整体替换
	UpdateBook(ctx context.Context, id uint, input BookInput) (*Book, error)

	// DeleteBook 下架图书
	DeleteBook(ctx context.Context, id uint) error

	// GetBook 获取在售图书详情
	GetBook(ctx context.Context, id uint) (*Book, error)

	// ListBooks 分页查询在售图书
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// BookInput 创建/更新图书的输入
type BookInput struct {
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

// service 领域服务实现
type service struct {
	repo       Repository
	authors    AuthorRepository
	categories CategoryRepository
}

// NewService 创建图书领域服务
func NewService(repo Repository, authors AuthorRepository, categories CategoryRepository) Service {
	return &service{repo: repo, authors: authors, categories: categories}
}

// CreateBook 上架图书
func (s *service) CreateBook(ctx context.Context, input BookInput) (*Book, error) {
	// 1. 字段校验
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// 2. ISBN预检查(并发下仍由唯一索引兜底)
	if _, err := s.repo.FindByISBN(ctx, input.ISBN); err == nil {
		return nil, ErrISBNDuplicate
	} else if !errors.Is(err, ErrBookNotFound) {
		return nil, err
	}

	// 3. 解析作者、分类
	book := NewBook(input.ISBN, input.Title, input.Publisher, input.Description, input.CoverURL,
		input.Price, input.Currency, input.Stock)
	if err := s.resolveAssociations(ctx, book, input); err != nil {
		return nil, err
	}

	// 4. 持久化
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// UpdateBook 更新图书
func (s *service) UpdateBook(ctx context.Context, id uint, input BookInput) (*Book, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// ISBN变更时检查是否与其他图书冲突
	if input.ISBN != book.ISBN {
		if other, err := s.repo.FindByISBN(ctx, input.ISBN); err == nil && other.ID != id {
			return nil, ErrISBNDuplicate
		} else if err != nil && !errors.Is(err, ErrBookNotFound) {
			return nil, err
		}
	}

	book.ISBN = input.ISBN
	book.Title = input.Title
	book.Publisher = input.Publisher
	book.Description = input.Description
	book.CoverURL = input.CoverURL
	book.Currency = strings.ToUpper(input.Currency)
	if err := book.UpdatePrice(input.Price); err != nil {
		return nil, err
	}
	if err := book.UpdateStock(input.Stock); err != nil {
		return nil, err
	}
	if err := s.resolveAssociations(ctx, book, input); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook 下架图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// GetBook 获取图书详情
func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *service) resolveAssociations(ctx context.Context, book *Book, input BookInput) error {
	ids := uniqueIDs(input.AuthorIDs)
	authors, err := s.authors.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(authors) != len(ids) {
		return ErrAuthorNotFound
	}

	ids = uniqueIDs(input.CategoryIDs)
	categories, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(categories) != len(ids) {
		return ErrCategoryNotFound
	}

	book.Authors = authors
	book.Categories = categories
	return nil
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

var (
	isbnSeparators = regexp.MustCompile(`[-\s]`)
	isbnDigits     = regexp.MustCompile(`^[0-9]{9}[0-9X]$|^[0-9]{13}$`)
	currencyCode   = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

func validateInput(input BookInput) error {
	if !isValidISBN(input.ISBN) {
		return ErrInvalidISBN
	}
	if n := utf8.RuneCountInString(input.Title); n == 0 || n > 200 {
		return ErrInvalidTitle
	}
	if !input.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if !currencyCode.MatchString(input.Currency) {
		return ErrInvalidCurrency
	}
	if input.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// isValidISBN 校验ISBN格式
// 支持ISBN-10(末位可为X)与ISBN-13,允许"-"和空格分隔
// 简化实现:不校验校验位
func isValidISBN(isbn string) bool {
	return isbnDigits.MatchString(isbnSeparators.ReplaceAllString(isbn, ""))
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
