package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookhub/internal/domain/shared"
)

// isDuplicateError 判断是否为MySQL唯一索引冲突错误
// MySQL错误码:
// - 1062: Duplicate entry 'xxx' for key 'yyy'
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// isDuplicateOn 唯一索引冲突且冲突的是指定索引
func isDuplicateOn(err error, index string) bool {
	return isDuplicateError(err) && strings.Contains(err.Error(), index)
}

// isNotFound gorm未找到记录
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// forUpdate SELECT ... FOR UPDATE
var forUpdate = clause.Locking{Strength: "UPDATE"}

// insertIgnore 主键冲突时不插入(MySQL渲染为ON DUPLICATE KEY UPDATE pk=pk),
// RowsAffected为0表示行已存在
var insertIgnore = clause.OnConflict{DoNothing: true}

// paginate 分页作用域
func paginate(page, size int) func(*gorm.DB) *gorm.DB {
	p := shared.NewPage(page, size)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Size)
	}
}
