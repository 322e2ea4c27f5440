package dto

import "github.com/shopspring/decimal"

// BookRequest 上架/修改图书请求
// validator tag说明:
// - required: 必填字段
// - max: 字符串长度上限
// - dive: 校验切片中的每个元素
// ISBN格式、价格>0、币种代码由领域服务校验
type BookRequest struct {
	ISBN        string          `json:"isbn" binding:"required,max=20" example:"978-7-111-54742-6"`
	Title       string          `json:"title" binding:"required,max=200" example:"Go程序设计语言"`
	Publisher   string          `json:"publisher" binding:"max=100" example:"机械工业出版社"`
	Description string          `json:"description" binding:"max=5000"`
	CoverURL    string          `json:"coverUrl" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"79.00"`
	Currency    string          `json:"currency" binding:"required,len=3" example:"CNY"`
	Stock       int             `json:"stock" binding:"min=0" example:"100"`
	AuthorIDs   []uint          `json:"authorIds" binding:"omitempty,dive,min=1"`
	CategoryIDs []uint          `json:"categoryIds" binding:"omitempty,dive,min=1"`
}

// ListBooksQuery 图书列表查询参数
type ListBooksQuery struct {
	PageQuery
	Keyword    string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	CategoryID uint   `form:"categoryId"`
	AuthorID   uint   `form:"authorId"`
	SortBy     string `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc rating_desc" example:"newest"`
}

// AuthorRequest 新增作者
type AuthorRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"刘慈欣"`
	Bio  string `json:"bio" binding:"max=2000"`
}

// CategoryRequest 新增分类
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"科幻"`
}

// PageQuery 通用分页参数，越界值由shared.NewPage规范化
type PageQuery struct {
	Page int `form:"page" binding:"omitempty,min=1" example:"1"`
	Size int `form:"size" binding:"omitempty,min=1,max=100" example:"20"`
}
