package shared

import "context"

// TxManager 事务管理器接口
// 设计说明：
// 1. fn内所有Repository调用共享同一个事务（事务句柄通过ctx传递）
// 2. fn返回error时回滚，返回nil时提交
// 3. 接口定义在domain层，mysql与内存实现各自满足它
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
