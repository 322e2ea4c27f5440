package mysql

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/xiebiao/bookhub/internal/domain/book"
	apperrors "github.com/xiebiao/bookhub/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
// 4. 普通查询依赖gorm.DeletedAt自动排除已下架图书,Lock*与库存、评分写入使用Unscoped
type bookRepository struct {
	baseRepository
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{baseRepository{db}}
}

// Create 创建图书
// Omit("Authors.*")只写关联表,不回写作者、分类本身
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	err := r.getDB(ctx).Omit("Authors.*", "Categories.*").Create(model).Error
	if err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找在售图书(含作者、分类)
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).Preload("Authors").Preload("Categories").First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	if err := r.getDB(ctx).Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindByIDs 批量查询在售图书
func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint) ([]*book.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []BookModel
	if err := r.getDB(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntities(models), nil
}

// Update 更新图书信息并替换作者、分类
// 评分聚合不在这里写入,只能由UpdateRating修改
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	return r.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&BookModel{ID: b.ID}).Updates(map[string]interface{}{
			"isbn":        b.ISBN,
			"title":       b.Title,
			"publisher":   b.Publisher,
			"description": b.Description,
			"cover_url":   b.CoverURL,
			"price":       b.Price,
			"currency":    b.Currency,
			"stock":       b.Stock,
		}).Error
		if err != nil {
			if isDuplicateError(err) {
				return book.ErrISBNDuplicate
			}
			return apperrors.Wrap(err, "更新图书失败")
		}

		if err := tx.Model(model).Association("Authors").Replace(model.Authors); err != nil {
			return apperrors.Wrap(err, "更新图书作者失败")
		}
		if err := tx.Model(model).Association("Categories").Replace(model.Categories); err != nil {
			return apperrors.Wrap(err, "更新图书分类失败")
		}
		return nil
	})
}

// Delete 下架图书(软删除)
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&BookModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// List 分页查询在售图书
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	query := r.getDB(ctx).Model(&BookModel{})

	// 关键词搜索(书名、ISBN、出版社)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR isbn LIKE ? OR publisher LIKE ?", keyword, keyword, keyword)
	}
	if params.CategoryID != 0 {
		query = query.Where("id IN (?)",
			r.getDB(ctx).Table("book_categories").Select("book_id").Where("category_id = ?", params.CategoryID))
	}
	if params.AuthorID != 0 {
		query = query.Where("id IN (?)",
			r.getDB(ctx).Table("book_authors").Select("book_id").Where("author_id = ?", params.AuthorID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	// 排序(id作为第二排序键保证分页稳定)
	switch params.SortBy {
	case book.SortPriceAsc:
		query = query.Order("price ASC")
	case book.SortPriceDesc:
		query = query.Order("price DESC")
	case book.SortRatingDesc:
		query = query.Order("avg_rating DESC")
	default:
		query = query.Order("created_at DESC")
	}
	query = query.Order("id DESC")

	err := query.Preload("Authors").Preload("Categories").
		Scopes(paginate(params.Page, params.PageSize)).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	return toBookEntities(models), total, nil
}

// LockByID 悲观锁查询图书(含已下架)
// 教学要点:必须使用getDB(ctx)从context获取事务DB,否则锁在语句结束时就释放了
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.getDB(ctx).Unscoped().Clauses(forUpdate).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntity(&model), nil
}

// LockByIDs 按ID升序加锁
// SELECT ... WHERE id IN (...) ORDER BY id FOR UPDATE
func (r *bookRepository) LockByIDs(ctx context.Context, ids []uint) ([]*book.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var models []BookModel
	err := r.getDB(ctx).Unscoped().Clauses(forUpdate).
		Where("id IN ?", sorted).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "锁定图书失败")
	}
	return toBookEntities(models), nil
}

// UpdateStock 更新库存(原子操作)
// UPDATE books SET stock = stock + delta WHERE id = ? AND stock + delta >= 0
func (r *bookRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := r.getDB(ctx)
	result := db.Unscoped().Model(&BookModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta). // 防止库存为负
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 图书不存在,或者库存不足,再查一次确定原因
		var count int64
		if err := db.Unscoped().Model(&BookModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "查询图书失败")
		}
		if count == 0 {
			return book.ErrBookNotFound
		}
		return book.ErrInsufficientStock
	}
	return nil
}

// UpdateRating 写入评分聚合
// UpdateColumns不更新updated_at,评分变化不算图书信息修改
func (r *bookRepository) UpdateRating(ctx context.Context, id uint, avgRating float64, reviewCount int) error {
	err := r.getDB(ctx).Unscoped().Model(&BookModel{ID: id}).UpdateColumns(map[string]interface{}{
		"avg_rating":   avgRating,
		"review_count": reviewCount,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新图书评分失败")
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	model := &BookModel{
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
		Authors:     make([]AuthorModel, len(b.Authors)),
		Categories:  make([]CategoryModel, len(b.Categories)),
	}
	for i, a := range b.Authors {
		model.Authors[i] = AuthorModel{ID: a.ID, Name: a.Name, Bio: a.Bio, CreatedAt: a.CreatedAt}
	}
	for i, c := range b.Categories {
		model.Categories[i] = CategoryModel{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	}
	return model
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	b := &book.Book{
		ID:          model.ID,
		ISBN:        model.ISBN,
		Title:       model.Title,
		Publisher:   model.Publisher,
		Description: model.Description,
		CoverURL:    model.CoverURL,
		Price:       model.Price,
		Currency:    model.Currency,
		Stock:       model.Stock,
		AvgRating:   model.AvgRating,
		ReviewCount: model.ReviewCount,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	for _, a := range model.Authors {
		b.Authors = append(b.Authors, toAuthorEntity(a))
	}
	for _, c := range model.Categories {
		b.Categories = append(b.Categories, toCategoryEntity(c))
	}
	if model.DeletedAt.Valid {
		t := model.DeletedAt.Time
		b.DeletedAt = &t
	}
	return b
}

func toBookEntities(models []BookModel) []*book.Book {
	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}

func toAuthorEntity(m AuthorModel) book.Author {
	return book.Author{ID: m.ID, Name: m.Name, Bio: m.Bio, CreatedAt: m.CreatedAt}
}

func toCategoryEntity(m CategoryModel) book.Category {
	return book.Category{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}

// authorRepository 作者仓储
type authorRepository struct {
	baseRepository
}

// NewAuthorRepository 创建作者仓储
func NewAuthorRepository(db *gorm.DB) book.AuthorRepository {
	return &authorRepository{baseRepository{db}}
}

func (r *authorRepository) Create(ctx context.Context, a *book.Author) error {
	model := &AuthorModel{Name: a.Name, Bio: a.Bio}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建作者失败")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	return nil
}

func (r *authorRepository) FindByIDs(ctx context.Context, ids []uint) ([]book.Author, error) {
	if len(ids) == 0 {
		return []book.Author{}, nil
	}
	var models []AuthorModel
	if err := r.getDB(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询作者失败")
	}
	authors := make([]book.Author, len(models))
	for i, m := range models {
		authors[i] = toAuthorEntity(m)
	}
	return authors, nil
}

func (r *authorRepository) List(ctx context.Context, page, pageSize int) ([]book.Author, int64, error) {
	var models []AuthorModel
	var total int64
	db := r.getDB(ctx).Model(&AuthorModel{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询作者总数失败")
	}
	if err := db.Order("id ASC").Scopes(paginate(page, pageSize)).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询作者列表失败")
	}
	authors := make([]book.Author, len(models))
	for i, m := range models {
		authors[i] = toAuthorEntity(m)
	}
	return authors, total, nil
}

// categoryRepository 分类仓储
type categoryRepository struct {
	baseRepository
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) book.CategoryRepository {
	return &categoryRepository{baseRepository{db}}
}

func (r *categoryRepository) Create(ctx context.Context, c *book.Category) error {
	model := &CategoryModel{Name: c.Name}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrCategoryDuplicate
		}
		return apperrors.Wrap(err, "创建分类失败")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	return nil
}

func (r *categoryRepository) FindByIDs(ctx context.Context, ids []uint) ([]book.Category, error) {
	if len(ids) == 0 {
		return []book.Category{}, nil
	}
	var models []CategoryModel
	if err := r.getDB(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类失败")
	}
	categories := make([]book.Category, len(models))
	for i, m := range models {
		categories[i] = toCategoryEntity(m)
	}
	return categories, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]book.Category, error) {
	var models []CategoryModel
	if err := r.getDB(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询分类列表失败")
	}
	categories := make([]book.Category, len(models))
	for i, m := range models {
		categories[i] = toCategoryEntity(m)
	}
	return categories, nil
}
