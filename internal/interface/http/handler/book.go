package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookhub/internal/application/book"
	"github.com/xiebiao/bookhub/internal/interface/http/dto"
	"github.com/xiebiao/bookhub/pkg/response"
)

// BookHandler 图书、作者、分类
type BookHandler struct {
	manageUseCase *appbook.ManageBookUseCase
	queryUseCase  *appbook.QueryBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(manageUseCase *appbook.ManageBookUseCase, queryUseCase *appbook.QueryBookUseCase) *BookHandler {
	return &BookHandler{
		manageUseCase: manageUseCase,
		queryUseCase:  queryUseCase,
	}
}

func toBookRequest(req dto.BookRequest) appbook.BookRequest {
	return appbook.BookRequest{
		ISBN:        req.ISBN,
		Title:       req.Title,
		Publisher:   req.Publisher,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		Price:       req.Price,
		Currency:    req.Currency,
		Stock:       req.Stock,
		AuthorIDs:   req.AuthorIDs,
		CategoryIDs: req.CategoryIDs,
	}
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询在售图书，支持关键词、分类、作者筛选
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        size query int false "每页数量" default(20)
// @Param        keyword query string false "书名/ISBN/出版社关键词"
// @Param        categoryId query int false "分类ID"
// @Param        authorId query int false "作者ID"
// @Param        sort query string false "排序" Enums(newest, price_asc, price_desc, rating_desc)
// @Success      200 {object} response.Response{payload=response.PageData{list=[]appbook.BookDTO}}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var q dto.ListBooksQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.queryUseCase.List(c.Request.Context(), appbook.ListBooksRequest{
		Page:       q.Page,
		PageSize:   q.Size,
		Keyword:    q.Keyword,
		CategoryID: q.CategoryID,
		AuthorID:   q.AuthorID,
		SortBy:     q.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Books, result.Total, result.Page, result.Size)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{payload=appbook.BookDTO}
// @Failure      404 {object} response.ErrorResponse "图书不存在或已下架"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.queryUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateBook 上架图书（管理员）
// @Summary      上架图书
// @Tags         管理后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} response.Response{payload=appbook.BookDTO}
// @Failure      400 {object} response.ErrorResponse "参数错误"
// @Failure      403 {object} response.ErrorResponse "非管理员"
// @Failure      409 {object} response.ErrorResponse "ISBN已存在"
// @Router       /api/v1/admin/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.Create(c.Request.Context(), toBookRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateBook 修改图书（管理员），作者与分类整体替换
// @Summary      修改图书
// @Tags         管理后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} response.Response{payload=appbook.BookDTO}
// @Router       /api/v1/admin/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.Update(c.Request.Context(), id, toBookRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 下架图书（管理员，软删除）
// @Summary      下架图书
// @Tags         管理后台
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/admin/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.manageUseCase.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListAuthors 作者列表
// @Summary      作者列表
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码"
// @Param        size query int false "每页数量"
// @Success      200 {object} response.Response{payload=response.PageData{list=[]appbook.AuthorDTO}}
// @Router       /api/v1/authors [get]
func (h *BookHandler) ListAuthors(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	result, err := h.queryUseCase.ListAuthors(c.Request.Context(), q.Page, q.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Authors, result.Total, result.Page, result.Size)
}

// CreateAuthor 新增作者（管理员）
// @Summary      新增作者
// @Tags         管理后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AuthorRequest true "作者信息"
// @Success      201 {object} response.Response{payload=appbook.AuthorDTO}
// @Router       /api/v1/admin/authors [post]
func (h *BookHandler) CreateAuthor(c *gin.Context) {
	var req dto.AuthorRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.CreateAuthor(c.Request.Context(), req.Name, req.Bio)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListCategories 全部分类
// @Summary      分类列表
// @Tags         图书
// @Produce      json
// @Success      200 {object} response.Response{payload=[]appbook.CategoryDTO}
// @Router       /api/v1/categories [get]
func (h *BookHandler) ListCategories(c *gin.Context) {
	result, err := h.queryUseCase.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateCategory 新增分类（管理员，名称唯一）
// @Summary      新增分类
// @Tags         管理后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CategoryRequest true "分类名称"
// @Success      201 {object} response.Response{payload=appbook.CategoryDTO}
// @Failure      409 {object} response.ErrorResponse "分类名已存在"
// @Router       /api/v1/admin/categories [post]
func (h *BookHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.manageUseCase.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
