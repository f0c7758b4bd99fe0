package cart

import (
	"sort"
	"time"
)

// Cart 购物车实体(聚合根)
// 设计说明:
// 1. 每个用户恰好一个购物车(user_id唯一索引保证)
// 2. 购物车是可变的暂存区:不缓存价格,结账时从图书表读取实时售价
// 3. 库存检查在购物车阶段只是提示性的(购物车生命周期长,库存随时在变,
//    每次变更都做强校验是无谓开销);权威校验只在结账事务内做
type Cart struct {
	ID        uint
	UserID    uint
	Items     []Item
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item 购物车条目
// 同一购物车内ISBN唯一,重复加购合并数量
type Item struct {
	ID       uint
	CartID   uint
	ISBN     string
	Quantity int
}

// NewCart 创建空购物车
func NewCart(userID uint) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		Items:     nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem 加购(领域行为)
// 业务规则:
// 1. 数量最小为1(小于1时按1处理)
// 2. ISBN已在购物车中时合并数量,不产生重复行
func (c *Cart) AddItem(isbn string, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Items {
		if c.Items[i].ISBN == isbn {
			c.Items[i].Quantity += qty
			c.touch()
			return
		}
	}
	c.Items = append(c.Items, Item{CartID: c.ID, ISBN: isbn, Quantity: qty})
	c.touch()
}

// SetQuantity 修改条目数量(覆盖而非累加)
func (c *Cart) SetQuantity(isbn string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Items {
		if c.Items[i].ISBN == isbn {
			c.Items[i].Quantity = qty
			c.touch()
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveItem 删除条目
func (c *Cart) RemoveItem(isbn string) error {
	for i := range c.Items {
		if c.Items[i].ISBN == isbn {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear 清空购物车(结账成功后调用)
func (c *Cart) Clear() {
	c.Items = nil
	c.touch()
}

// IsEmpty 是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// SortedItems 按ISBN升序返回条目副本
// 结账时按此顺序逐本加锁:两个共享图书的结账请求永远以相同顺序
// 获取行锁,不会交叉等待形成死锁
func (c *Cart) SortedItems() []Item {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ISBN < items[j].ISBN
	})
	return items
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
