package order

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/cart"
	"github.com/xiebiao/bookmall/internal/domain/order"
	"github.com/xiebiao/bookmall/internal/domain/stock"
)

// 教学说明：结账用例单元测试
//
// 结账是整个项目最核心的用例,这里用内存实现替代MySQL:
// - memStore 持有全部状态(图书/购物车/订单)
// - memTxManager 用互斥锁串行化事务,出错时恢复快照,
//   模拟数据库的"行锁+回滚"语义
// 这样可以在不起数据库的情况下验证并发扣减、整体回滚、
// 价格快照等关键行为

// memStore 内存存储,模拟数据库
type memStore struct {
	mu     sync.Mutex // 保护三张"表"
	txMu   sync.Mutex // 串行化事务,模拟行锁
	books  map[string]*book.Book
	carts  map[uint]*cart.Cart
	orders map[uint]*order.Order
	nextID uint
}

func newMemStore() *memStore {
	return &memStore{
		books:  make(map[string]*book.Book),
		carts:  make(map[uint]*cart.Cart),
		orders: make(map[uint]*order.Order),
	}
}

func (s *memStore) addBook(b *book.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	s.books[b.ISBN] = b
}

func (s *memStore) addCart(userID uint, items ...cart.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cart.NewCart(userID)
	c.Items = items
	s.carts[userID] = c
}

func (s *memStore) stockOf(isbn string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books[isbn].Stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// snapshot 深拷贝当前状态,restore时整体恢复(模拟事务回滚)
type storeSnapshot struct {
	books  map[string]*book.Book
	carts  map[uint]*cart.Cart
	orders map[uint]*order.Order
}

func (s *memStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		books:  make(map[string]*book.Book, len(s.books)),
		carts:  make(map[uint]*cart.Cart, len(s.carts)),
		orders: make(map[uint]*order.Order, len(s.orders)),
	}
	for k, v := range s.books {
		snap.books[k] = cloneBook(v)
	}
	for k, v := range s.carts {
		snap.carts[k] = cloneCart(v)
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = snap.books
	s.carts = snap.carts
	s.orders = snap.orders
}

func cloneBook(b *book.Book) *book.Book {
	c := *b
	return &c
}

func cloneCart(c *cart.Cart) *cart.Cart {
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	return &cp
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	return &cp
}

// memTxManager 内存事务管理:串行执行+失败恢复快照
type memTxManager struct {
	s *memStore
}

func (t *memTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(ctx); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// memBookRepo 内存图书仓储
type memBookRepo struct {
	s *memStore
}

func (r *memBookRepo) Create(ctx context.Context, b *book.Book) error {
	r.s.addBook(b)
	return nil
}

func (r *memBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.books {
		if b.ID == id {
			return cloneBook(b), nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *memBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return cloneBook(b), nil
}

func (r *memBookRepo) Update(ctx context.Context, b *book.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.books[b.ISBN] = cloneBook(b)
	return nil
}

func (r *memBookRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for isbn, b := range r.s.books {
		if b.ID == id {
			delete(r.s.books, isbn)
			return nil
		}
	}
	return book.ErrBookNotFound
}

func (r *memBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*book.Book
	for _, b := range r.s.books {
		out = append(out, cloneBook(b))
	}
	return out, int64(len(out)), nil
}

func (r *memBookRepo) LockByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	// 事务已由memTxManager串行化,这里等价于普通读取
	return r.FindByISBN(ctx, isbn)
}

// memCartRepo 内存购物车仓储
type memCartRepo struct {
	s *memStore
}

func (r *memCartRepo) GetOrCreate(ctx context.Context, userID uint) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[userID]
	if !ok {
		c = cart.NewCart(userID)
		r.s.carts[userID] = c
	}
	return cloneCart(c), nil
}

func (r *memCartRepo) Save(ctx context.Context, c *cart.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.carts[c.UserID] = cloneCart(c)
	return nil
}

func (r *memCartRepo) Clear(ctx context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.carts[userID]; ok {
		c.Items = nil
	}
	return nil
}

// memOrderRepo 内存订单仓储
type memOrderRepo struct {
	s *memStore
}

func (r *memOrderRepo) Create(ctx context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	o.ID = r.s.nextID
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *memOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *memOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.OrderNo == orderNo {
			return cloneOrder(o), nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	stored.Status = o.Status
	stored.UpdatedAt = o.UpdatedAt
	return nil
}

func (r *memOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*order.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	return out, int64(len(out)), nil
}

// memLedger 内存库存台账:检查+扣减在同一临界区内完成
type memLedger struct {
	s *memStore
}

func (l *memLedger) TryDecrement(ctx context.Context, isbn string, qty int) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	b, ok := l.s.books[isbn]
	if !ok {
		return 0, book.ErrBookNotFound
	}
	if b.Stock < qty {
		return 0, stock.NewInsufficientError(isbn, qty, b.Stock)
	}
	b.Stock -= qty
	return b.Stock, nil
}

func (l *memLedger) Increment(ctx context.Context, isbn string, qty int) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	b, ok := l.s.books[isbn]
	if !ok {
		return 0, book.ErrBookNotFound
	}
	b.Stock += qty
	return b.Stock, nil
}

// recordReplenisher 记录补货触发的ISBN
type recordReplenisher struct {
	mu    sync.Mutex
	isbns []string
}

func (r *recordReplenisher) Trigger(ctx context.Context, isbn string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isbns = append(r.isbns, isbn)
	return nil
}

func (r *recordReplenisher) triggered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.isbns...)
}

func newCheckoutFixture() (*memStore, *CheckoutUseCase, *recordReplenisher) {
	s := newMemStore()
	rep := &recordReplenisher{}
	uc := NewCheckoutUseCase(
		&memCartRepo{s},
		&memBookRepo{s},
		&memOrderRepo{s},
		&memLedger{s},
		&memTxManager{s},
		rep,
		nil,
	)
	return s, uc, rep
}

// validExpiry 未来一年的有效期,避免测试随时间失效
func validExpiry() string {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(1, 0, 0).Format("01/06")
}

// expiredExpiry 上个月的有效期(整月有效规则下已过期)
func expiredExpiry() string {
	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -1, 0).Format("01/06")
}

func checkoutReq(userID uint) CheckoutRequest {
	return CheckoutRequest{
		UserID:          userID,
		CardNumber:      "6222021234567890",
		CardExpiry:      validExpiry(),
		ShippingAddress: "北京市海淀区中关村大街1号",
	}
}

func TestCheckout_Success(t *testing.T) {
	s, uc, _ := newCheckoutFixture()

	s.addBook(book.NewBook("9787000000011", "Go语言实战", "作者A", "人民邮电出版社", 5900, 3500, 10, 2, "", "", 1))
	s.addBook(book.NewBook("9787000000028", "高性能MySQL", "作者B", "电子工业出版社", 12800, 8000, 5, 2, "", "", 1))
	s.addCart(100,
		cart.Item{ISBN: "9787000000011", Quantity: 2},
		cart.Item{ISBN: "9787000000028", Quantity: 1},
	)

	resp, err := uc.Execute(context.Background(), checkoutReq(100))
	require.NoError(t, err)

	// 总额 = 2×59.00 + 1×128.00 = 246.00元
	assert.Equal(t, int64(24600), resp.Total)
	assert.Equal(t, "246.00", resp.TotalYuan)
	assert.Equal(t, "待处理", resp.Status)
	assert.NotEmpty(t, resp.OrderNo)
	assert.Len(t, resp.Items, 2)

	// 库存已扣减
	assert.Equal(t, 8, s.stockOf("9787000000011"))
	assert.Equal(t, 4, s.stockOf("9787000000028"))

	// 购物车已清空(与订单创建同事务)
	c, err := (&memCartRepo{s}).GetOrCreate(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCheckout_EmptyCart(t *testing.T) {
	_, uc, _ := newCheckoutFixture()

	_, err := uc.Execute(context.Background(), checkoutReq(100))
	assert.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestCheckout_PaymentValidation(t *testing.T) {
	s, uc, _ := newCheckoutFixture()
	s.addBook(book.NewBook("9787000000011", "Go语言实战", "作者A", "人民邮电出版社", 5900, 3500, 10, 2, "", "", 1))
	s.addCart(100, cart.Item{ISBN: "9787000000011", Quantity: 1})

	t.Run("过期卡被拒绝", func(t *testing.T) {
		req := checkoutReq(100)
		req.CardExpiry = expiredExpiry()
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, order.ErrExpiredPayment)
	})

	t.Run("非法卡号被拒绝", func(t *testing.T) {
		req := checkoutReq(100)
		req.CardNumber = "not-a-card"
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, order.ErrInvalidCard)
	})

	t.Run("校验失败不扣库存", func(t *testing.T) {
		assert.Equal(t, 10, s.stockOf("9787000000011"))
		assert.Equal(t, 0, s.orderCount())
	})
}

// TestCheckout_CollectsAllShortfalls 验证短缺清单的完整性:
// 多行不足时不在第一行停下,而是收集全部缺口后整体拒绝
func TestCheckout_CollectsAllShortfalls(t *testing.T) {
	s, uc, _ := newCheckoutFixture()

	s.addBook(book.NewBook("9787000000011", "库存充足的书", "A", "出版社甲", 5900, 3500, 100, 2, "", "", 1))
	s.addBook(book.NewBook("9787000000028", "只剩2本的书", "B", "出版社乙", 5900, 3500, 2, 2, "", "", 1))
	s.addBook(book.NewBook("9787000000035", "已售罄的书", "C", "出版社丙", 5900, 3500, 0, 2, "", "", 1))
	s.addCart(100,
		cart.Item{ISBN: "9787000000011", Quantity: 3},
		cart.Item{ISBN: "9787000000028", Quantity: 5},
		cart.Item{ISBN: "9787000000035", Quantity: 1},
	)

	_, err := uc.Execute(context.Background(), checkoutReq(100))
	require.Error(t, err)

	var ins *stock.InsufficientError
	require.ErrorAs(t, err, &ins)
	require.Len(t, ins.Shortfalls, 2, "应收集全部缺货行")

	// 扣减按ISBN升序进行,缺货行也按此顺序
	assert.Equal(t, stock.Shortfall{ISBN: "9787000000028", Requested: 5, Available: 2}, ins.Shortfalls[0])
	assert.Equal(t, stock.Shortfall{ISBN: "9787000000035", Requested: 1, Available: 0}, ins.Shortfalls[1])

	// 整体回滚:充足行先扣掉的3本也要恢复
	assert.Equal(t, 100, s.stockOf("9787000000011"))
	assert.Equal(t, 2, s.stockOf("9787000000028"))
	assert.Equal(t, 0, s.orderCount())

	// 购物车保持原样,买家调整后可重试
	c, _ := (&memCartRepo{s}).GetOrCreate(context.Background(), 100)
	assert.Len(t, c.Items, 3)
}

// TestCheckout_VanishedBook 加购后图书被下架:按零库存计入缺货清单
func TestCheckout_VanishedBook(t *testing.T) {
	s, uc, _ := newCheckoutFixture()

	s.addBook(book.NewBook("9787000000011", "正常的书", "A", "出版社甲", 5900, 3500, 10, 2, "", "", 1))
	s.addCart(100,
		cart.Item{ISBN: "9787000000011", Quantity: 1},
		cart.Item{ISBN: "9787999999990", Quantity: 2}, // 不存在
	)

	_, err := uc.Execute(context.Background(), checkoutReq(100))

	var ins *stock.InsufficientError
	require.ErrorAs(t, err, &ins)
	require.Len(t, ins.Shortfalls, 1)
	assert.Equal(t, stock.Shortfall{ISBN: "9787999999990", Requested: 2, Available: 0}, ins.Shortfalls[0])

	assert.Equal(t, 10, s.stockOf("9787000000011"), "正常行应随整体回滚恢复")
}

// TestCheckout_PriceSnapshot 下单后改价不影响已成交订单
func TestCheckout_PriceSnapshot(t *testing.T) {
	s, uc, _ := newCheckoutFixture()

	s.addBook(book.NewBook("9787000000011", "会涨价的书", "A", "出版社甲", 5000, 3000, 10, 0, "", "", 1))
	s.addCart(100, cart.Item{ISBN: "9787000000011", Quantity: 2})

	resp, err := uc.Execute(context.Background(), checkoutReq(100))
	require.NoError(t, err)
	require.Equal(t, int64(10000), resp.Total)

	// 改价
	s.mu.Lock()
	s.books["9787000000011"].Price = 9900
	s.mu.Unlock()

	// 已落库的订单仍是下单时的快照价
	stored, err := (&memOrderRepo{s}).FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), stored.Total)
	assert.Equal(t, int64(5000), stored.Items[0].Price)
}

// TestCheckout_ConcurrentOversell 防超卖:库存5本,10人并发各买1本,
// 恰好5人成功,库存归零且不为负
func TestCheckout_ConcurrentOversell(t *testing.T) {
	s, uc, _ := newCheckoutFixture()

	const isbn = "9787000000011"
	s.addBook(book.NewBook(isbn, "抢购图书", "A", "出版社甲", 5900, 3500, 5, 0, "", "", 1))

	const buyers = 10
	for i := 1; i <= buyers; i++ {
		s.addCart(uint(i), cart.Item{ISBN: isbn, Quantity: 1})
	}

	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 1; i <= buyers; i++ {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), checkoutReq(userID))
			results <- err
		}(uint(i))
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		failed++
		var ins *stock.InsufficientError
		require.ErrorAs(t, err, &ins, "失败原因必须是库存不足")
	}

	assert.Equal(t, 5, succeeded, "恰好5人成功")
	assert.Equal(t, 5, failed)
	assert.Equal(t, 0, s.stockOf(isbn), "库存必须精确归零")
	assert.Equal(t, 5, s.orderCount())
}

// TestCheckout_ReplenishTrigger 补货触发边界:
// 扣减后库存严格低于阈值才触发,等于阈值不触发
func TestCheckout_ReplenishTrigger(t *testing.T) {
	t.Run("低于阈值触发", func(t *testing.T) {
		s, uc, rep := newCheckoutFixture()
		s.addBook(book.NewBook("9787000000011", "畅销书", "A", "出版社甲", 5900, 3500, 6, 5, "", "", 1))
		s.addCart(100, cart.Item{ISBN: "9787000000011", Quantity: 2}) // 剩余4 < 阈值5

		_, err := uc.Execute(context.Background(), checkoutReq(100))
		require.NoError(t, err)
		assert.Equal(t, []string{"9787000000011"}, rep.triggered())
	})

	t.Run("等于阈值不触发", func(t *testing.T) {
		s, uc, rep := newCheckoutFixture()
		s.addBook(book.NewBook("9787000000011", "畅销书", "A", "出版社甲", 5900, 3500, 7, 5, "", "", 1))
		s.addCart(100, cart.Item{ISBN: "9787000000011", Quantity: 2}) // 剩余5 == 阈值5

		_, err := uc.Execute(context.Background(), checkoutReq(100))
		require.NoError(t, err)
		assert.Empty(t, rep.triggered())
	})
}

// TestCheckout_EndToEndScenario 一个完整的业务场景串联
func TestCheckout_EndToEndScenario(t *testing.T) {
	s, uc, rep := newCheckoutFixture()

	// 库存3本,阈值5:任何一次扣减都会把库存打到阈值之下
	s.addBook(book.NewBook("9787111111113", "薄库存的书", "A", "机械工业出版社", 5000, 3000, 3, 5, "", "", 1))
	s.addCart(100, cart.Item{ISBN: "9787111111113", Quantity: 2})

	resp, err := uc.Execute(context.Background(), checkoutReq(100))
	require.NoError(t, err)

	assert.Equal(t, int64(10000), resp.Total)
	assert.Equal(t, "100.00", resp.TotalYuan)
	assert.Equal(t, 1, s.stockOf("9787111111113"))
	assert.Equal(t, []string{"9787111111113"}, rep.triggered())

	fmt.Println("  订单号:", resp.OrderNo)
}
