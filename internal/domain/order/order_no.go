package order

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// orderNoPrefix 书店订单号前缀
const orderNoPrefix = "BH"

// GenerateOrderNo 生成订单号:BH + 下单时间(yyyyMMddHHmmss) + 6位随机数
// 示例:BH20250301143005042917
// 唯一性由orders.order_no唯一索引兜底,冲突时结算事务失败,用户重试即可
func GenerateOrderNo() string {
	return formatOrderNo(time.Now(), rand.IntN(1000000))
}

func formatOrderNo(placedAt time.Time, seq int) string {
	return fmt.Sprintf("%s%s%06d", orderNoPrefix, placedAt.Format("20060102150405"), seq)
}
