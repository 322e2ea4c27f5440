package shared

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page 分页参数（页码从1开始）
type Page struct {
	Page int
	Size int
}

// NewPage 规范化分页参数：页码<1取1，size越界取默认值或上限
func NewPage(page, size int) Page {
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Page: page, Size: size}
}

// Offset SQL OFFSET
func (p Page) Offset() int {
	return (p.Page - 1) * p.Size
}
