package user

import (
	"time"
)

// 角色常量
// 设计说明:角色只有两种,顾客和管理员;权限判断在接口层的
// RequireRole中间件做,领域层只负责存储和暴露角色
const (
	RoleCustomer = "customer" // 顾客(默认)
	RoleAdmin    = "admin"    // 管理员(可操作采购单、订单状态)
)

// User 用户实体(聚合根)
// DDD设计说明:
// 1. User是用户聚合的根实体,包含用户的核心属性
// 2. 密码已加密存储(bcrypt),不应该有GetPassword()等方法暴露明文
// 3. 领域实体不依赖GORM tag(infrastructure层的Repository实现时会处理映射)
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      string // customer | admin
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户(工厂方法)
// hashedPassword必须是bcrypt加密后的密码;新注册用户一律是顾客角色,
// 管理员由运维直接在数据库中授权
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateNickname 更新昵称(领域行为)
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
