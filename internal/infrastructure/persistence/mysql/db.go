package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookmall/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate，生产环境应使用版本化迁移脚本）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 注意：AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&CartModel{},
		&CartItemModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;comment:角色(customer/admin)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. ISBN有唯一索引:既防止重复,也是库存台账按ISBN行锁的依据
// 3. Stock永远>=0,由台账的条件更新保证,不依赖CHECK约束
type BookModel struct {
	ID               uint           `gorm:"primaryKey"`
	ISBN             string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title            string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author           string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher        string         `gorm:"index;size:100;not null;comment:出版社"`
	Price            int64          `gorm:"index:idx_list;not null;comment:售价(分)"`
	CostPrice        int64          `gorm:"not null;comment:进货单价(分)"`
	Stock            int            `gorm:"not null;comment:库存数量"`
	ReorderThreshold int            `gorm:"not null;comment:补货阈值"`
	CoverURL         string         `gorm:"size:500;comment:封面图片URL"`
	Description      string         `gorm:"type:text;comment:图书描述"`
	OwnerID          uint           `gorm:"index;not null;comment:发布者用户ID"`
	CreatedAt        time.Time      `gorm:"index:idx_list;comment:创建时间"`
	UpdatedAt        time.Time      `gorm:"comment:更新时间"`
	DeletedAt        gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// CartModel GORM购物车模型
// user_id唯一索引保证每个用户恰好一个购物车
type CartModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"uniqueIndex;not null;comment:用户ID"`
	Items     []CartItemModel `gorm:"foreignKey:CartID"`
	CreatedAt time.Time       `gorm:"comment:创建时间"`
	UpdatedAt time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel GORM购物车条目模型
// (cart_id, isbn)唯一索引:同一ISBN合并数量,不产生重复行
type CartItemModel struct {
	ID       uint   `gorm:"primaryKey"`
	CartID   uint   `gorm:"uniqueIndex:idx_cart_isbn;not null;comment:购物车ID"`
	ISBN     string `gorm:"uniqueIndex:idx_cart_isbn;size:20;not null;comment:ISBN号"`
	Quantity int    `gorm:"not null;comment:数量"`
}

// TableName 指定表名
func (CartItemModel) TableName() string {
	return "cart_items"
}

// OrderModel GORM订单模型
// 设计说明:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. 不依赖数据库default:初始状态由领域工厂方法显式设置
type OrderModel struct {
	ID              uint             `gorm:"primaryKey"`
	OrderNo         string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID          uint             `gorm:"index;not null;comment:买家用户ID"`
	Total           int64            `gorm:"not null;comment:订单总金额(分)"`
	Status          int              `gorm:"index;type:tinyint;not null;comment:订单状态(1待处理2处理中3已发货4已送达5已取消)"`
	ShippingAddress string           `gorm:"size:500;comment:收货地址"`
	Notes           string           `gorm:"size:500;comment:买家备注"`
	CardRef         string           `gorm:"size:8;comment:脱敏卡号(末4位)"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// Price是下单时刻的单价快照;Title是书名快照
type OrderItemModel struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  uint   `gorm:"index;not null;comment:订单ID"`
	BookID   uint   `gorm:"index;not null;comment:图书ID"`
	ISBN     string `gorm:"size:20;not null;comment:ISBN号"`
	Title    string `gorm:"size:200;not null;comment:书名快照"`
	Quantity int    `gorm:"not null;comment:购买数量"`
	Price    int64  `gorm:"not null;comment:下单时单价(分)"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// PurchaseOrderModel GORM采购单模型
// 设计说明:
// 1. publisher+status+created_at索引服务"出版社的开放采购单"查询
// 2. ConfirmedAt仅在确认后有值
type PurchaseOrderModel struct {
	ID          uint                     `gorm:"primaryKey"`
	PONo        string                   `gorm:"uniqueIndex;size:32;not null;comment:采购单号"`
	Publisher   string                   `gorm:"index:idx_pub_open;size:100;not null;comment:出版社"`
	Status      int                      `gorm:"index:idx_pub_open;type:tinyint;not null;comment:状态(1待确认2已确认3已取消)"`
	ConfirmedAt *time.Time               `gorm:"comment:确认时间"`
	Items       []PurchaseOrderItemModel `gorm:"foreignKey:PurchaseOrderID"`
	CreatedAt   time.Time                `gorm:"index:idx_pub_open;comment:创建时间"`
	UpdatedAt   time.Time                `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderItemModel GORM采购单明细模型
// (purchase_order_id, isbn)唯一:同一ISBN重复触发累加数量
type PurchaseOrderItemModel struct {
	ID              uint   `gorm:"primaryKey"`
	PurchaseOrderID uint   `gorm:"uniqueIndex:idx_po_isbn;not null;comment:采购单ID"`
	BookID          uint   `gorm:"index;not null;comment:图书ID"`
	ISBN            string `gorm:"uniqueIndex:idx_po_isbn;size:20;not null;comment:ISBN号"`
	Title           string `gorm:"size:200;not null;comment:书名快照"`
	Quantity        int    `gorm:"not null;comment:补货数量"`
	UnitCost        int64  `gorm:"not null;comment:进货单价快照(分)"`
}

// TableName 指定表名
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}
