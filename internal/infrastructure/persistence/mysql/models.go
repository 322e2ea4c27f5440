package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// =========================================
// GORM数据模型
// =========================================
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层实体不依赖GORM，Repository负责两者之间的转换
// 3. 金额统一decimal(12,2)，shopspring/decimal实现了Scanner/Valuer
// 4. 软删除使用gorm.DeletedAt，GORM在每个查询上自动追加deleted_at IS NULL，
//    需要看到已删除行时显式调用Unscoped()

// UserModel 用户
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱（含已注销用户）"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:16;not null;default:CUSTOMER;comment:角色"`
	CreatedAt time.Time      `gorm:"index;comment:注册时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:注销时间（软删除）"`
}

func (UserModel) TableName() string { return "users" }

// RefreshTokenModel 刷新令牌，只存SHA-256哈希
type RefreshTokenModel struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"index;not null"`
	TokenHash string     `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	RevokedAt *time.Time `gorm:"comment:吊销时间"`
	CreatedAt time.Time
}

func (RefreshTokenModel) TableName() string { return "refresh_tokens" }

// AuthorModel 作者
type AuthorModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"index;size:100;not null"`
	Bio       string `gorm:"type:text"`
	CreatedAt time.Time
}

func (AuthorModel) TableName() string { return "authors" }

// CategoryModel 分类
type CategoryModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:50;not null"`
	CreatedAt time.Time
}

func (CategoryModel) TableName() string { return "categories" }

// BookModel 图书
// 1. ISBN唯一索引覆盖已下架图书
// 2. 作者、分类通过book_authors、book_categories关联表多对多
// 3. avg_rating/review_count只由评分重算写入
type BookModel struct {
	ID          uint            `gorm:"primaryKey"`
	ISBN        string          `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string          `gorm:"index;size:200;not null;comment:书名"`
	Publisher   string          `gorm:"size:100;comment:出版社"`
	Description string          `gorm:"type:text;comment:图书描述"`
	CoverURL    string          `gorm:"size:500;comment:封面图片URL"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;index:idx_books_price;comment:价格"`
	Currency    string          `gorm:"size:3;not null;comment:币种"`
	Stock       int             `gorm:"not null;default:0;comment:库存数量"`
	AvgRating   float64         `gorm:"not null;default:0;index:idx_books_rating;comment:平均评分"`
	ReviewCount int             `gorm:"not null;default:0;comment:书评数"`
	Authors     []AuthorModel   `gorm:"many2many:book_authors;joinForeignKey:BookID;joinReferences:AuthorID"`
	Categories  []CategoryModel `gorm:"many2many:book_categories;joinForeignKey:BookID;joinReferences:CategoryID"`
	CreatedAt   time.Time       `gorm:"index;comment:上架时间"`
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:下架时间（软删除）"`
}

func (BookModel) TableName() string { return "books" }

// ReviewModel 书评，(user_id, book_id)唯一且覆盖已删除书评
type ReviewModel struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"uniqueIndex:uk_reviews_user_book;not null"`
	BookID       uint   `gorm:"uniqueIndex:uk_reviews_user_book;index;not null"`
	Rating       int    `gorm:"type:tinyint;not null"`
	Content      string `gorm:"type:text"`
	LikeCount    int    `gorm:"not null;default:0"`
	CommentCount int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (ReviewModel) TableName() string { return "reviews" }

// ReviewLikeModel 书评点赞，行存在即已点赞
type ReviewLikeModel struct {
	ReviewID  uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

func (ReviewLikeModel) TableName() string { return "review_likes" }

// CommentModel 评论
type CommentModel struct {
	ID        uint   `gorm:"primaryKey"`
	ReviewID  uint   `gorm:"index;not null"`
	UserID    uint   `gorm:"index;not null"`
	ParentID  *uint  `gorm:"index"`
	Content   string `gorm:"type:text;not null"`
	LikeCount int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (CommentModel) TableName() string { return "comments" }

// CommentLikeModel 评论点赞
type CommentLikeModel struct {
	CommentID uint `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

func (CommentLikeModel) TableName() string { return "comment_likes" }

// WishlistItemModel 心愿单
type WishlistItemModel struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false"`
	BookID    uint      `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"index"`
}

func (WishlistItemModel) TableName() string { return "wishlist_items" }

// CartModel 购物车
// ActiveUserID在ACTIVE时等于UserID，其他状态为NULL；
// 唯一索引保证每个用户最多一个ACTIVE购物车（MySQL没有部分索引，NULL互不冲突）
type CartModel struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"index;not null"`
	Status       string `gorm:"size:16;not null"`
	ActiveUserID *uint  `gorm:"uniqueIndex:uk_carts_active_user"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (CartModel) TableName() string { return "carts" }

// CartItemModel 购物车行，UnitPrice为加入时捕获的价格
type CartItemModel struct {
	CartID    uint            `gorm:"primaryKey;autoIncrement:false"`
	BookID    uint            `gorm:"primaryKey;autoIncrement:false"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency  string          `gorm:"size:3;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CartItemModel) TableName() string { return "cart_items" }

// OrderModel 订单
// cart_id唯一：同一个购物车最多生成一个订单
type OrderModel struct {
	ID            uint             `gorm:"primaryKey"`
	OrderNo       string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID        uint             `gorm:"index;not null;comment:买家用户ID"`
	CartID        *uint            `gorm:"uniqueIndex:uk_orders_cart_id;comment:来源购物车"`
	Status        string           `gorm:"size:16;index;not null"`
	PaymentStatus string           `gorm:"size:16;not null"`
	TotalAmount   decimal.Decimal  `gorm:"type:decimal(12,2);not null;comment:订单总金额（冻结）"`
	Currency      string           `gorm:"size:3;not null"`
	PlacedAt      time.Time        `gorm:"index;not null"`
	Items         []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单明细，保存单价与书名快照
type OrderItemModel struct {
	OrderID           uint            `gorm:"primaryKey;autoIncrement:false"`
	BookID            uint            `gorm:"primaryKey;autoIncrement:false;index"`
	Quantity          int             `gorm:"not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BookTitleSnapshot string          `gorm:"size:200;not null"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// allModels AutoMigrate的模型列表
func allModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&RefreshTokenModel{},
		&AuthorModel{},
		&CategoryModel{},
		&BookModel{},
		&ReviewModel{},
		&ReviewLikeModel{},
		&CommentModel{},
		&CommentLikeModel{},
		&WishlistItemModel{},
		&CartModel{},
		&CartItemModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}
