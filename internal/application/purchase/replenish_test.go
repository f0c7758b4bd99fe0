package purchase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/purchase"
	"github.com/xiebiao/bookmall/internal/infrastructure/config"
)

// 教学说明：补货引擎单元测试
//
// 验证的核心行为:
// 1. 聚合:窗口内同一出版社的触发合并到同一张待确认单
// 2. 幂等:同一ISBN重复触发抬数量,不产生重复行
// 3. 窗口过期/确认后的单不再吸收,触发开新单
// 4. 补货量 = 阈值×系数 − 当前库存,至少1本

// poStore 内存采购单存储
type poStore struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	books  map[string]*book.Book
	orders map[uint]*purchase.Order
	nextID uint
}

func newPOStore() *poStore {
	return &poStore{
		books:  make(map[string]*book.Book),
		orders: make(map[uint]*purchase.Order),
	}
}

func (s *poStore) addBook(b *book.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	s.books[b.ISBN] = b
}

func (s *poStore) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.orders {
		if o.Status == purchase.StatusPending {
			n++
		}
	}
	return n
}

func clonePO(o *purchase.Order) *purchase.Order {
	cp := *o
	cp.Items = append([]purchase.Item(nil), o.Items...)
	if o.ConfirmedAt != nil {
		ts := *o.ConfirmedAt
		cp.ConfirmedAt = &ts
	}
	return &cp
}

// poTxManager 串行化事务+失败恢复快照
type poTxManager struct {
	s *poStore
}

func (t *poTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	snapBooks := make(map[string]*book.Book, len(t.s.books))
	for k, v := range t.s.books {
		b := *v
		snapBooks[k] = &b
	}
	snapOrders := make(map[uint]*purchase.Order, len(t.s.orders))
	for k, v := range t.s.orders {
		snapOrders[k] = clonePO(v)
	}
	t.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.s.mu.Lock()
		t.s.books = snapBooks
		t.s.orders = snapOrders
		t.s.mu.Unlock()
		return err
	}
	return nil
}

// poBookRepo 只实现补货引擎用到的查询
type poBookRepo struct {
	s *poStore
}

func (r *poBookRepo) Create(ctx context.Context, b *book.Book) error {
	r.s.addBook(b)
	return nil
}

func (r *poBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.books {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *poBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[isbn]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *poBookRepo) Update(ctx context.Context, b *book.Book) error { return nil }
func (r *poBookRepo) Delete(ctx context.Context, id uint) error      { return nil }

func (r *poBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	return nil, 0, nil
}

func (r *poBookRepo) LockByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	return r.FindByISBN(ctx, isbn)
}

// poRepo 内存采购单仓储
type poRepo struct {
	s *poStore
}

func (r *poRepo) Create(ctx context.Context, o *purchase.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	o.ID = r.s.nextID
	for i := range o.Items {
		o.Items[i].PurchaseOrderID = o.ID
	}
	r.s.orders[o.ID] = clonePO(o)
	return nil
}

func (r *poRepo) FindByID(ctx context.Context, id uint) (*purchase.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, purchase.ErrOrderNotFound
	}
	return clonePO(o), nil
}

func (r *poRepo) LockByID(ctx context.Context, id uint) (*purchase.Order, error) {
	// 事务已由poTxManager串行化
	return r.FindByID(ctx, id)
}

func (r *poRepo) LockOpenByPublisher(ctx context.Context, publisher string, since time.Time) (*purchase.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *purchase.Order
	for _, o := range r.s.orders {
		if o.Publisher != publisher || o.Status != purchase.StatusPending {
			continue
		}
		if !since.IsZero() && o.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, purchase.ErrOrderNotFound
	}
	return clonePO(latest), nil
}

func (r *poRepo) Save(ctx context.Context, o *purchase.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; !ok {
		return purchase.ErrOrderNotFound
	}
	r.s.orders[o.ID] = clonePO(o)
	return nil
}

func (r *poRepo) List(ctx context.Context, status purchase.Status, page, pageSize int) ([]*purchase.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*purchase.Order
	for _, o := range r.s.orders {
		if status != 0 && o.Status != status {
			continue
		}
		out = append(out, clonePO(o))
	}
	return out, int64(len(out)), nil
}

// poLedger 内存库存台账
type poLedger struct {
	s *poStore
}

func (l *poLedger) TryDecrement(ctx context.Context, isbn string, qty int) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	b := l.s.books[isbn]
	b.Stock -= qty
	return b.Stock, nil
}

func (l *poLedger) Increment(ctx context.Context, isbn string, qty int) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	b, ok := l.s.books[isbn]
	if !ok {
		return 0, book.ErrBookNotFound
	}
	b.Stock += qty
	return b.Stock, nil
}

func newReplenishFixture(cfg config.ReplenishConfig) (*poStore, *ReplenishUseCase) {
	s := newPOStore()
	uc := NewReplenishUseCase(&poBookRepo{s}, &poRepo{s}, &poTxManager{s}, cfg, nil)
	return s, uc
}

var testReplenishCfg = config.ReplenishConfig{Window: time.Hour, RestockFactor: 2}

func TestReplenish_OpensOrderWithSnapshotCost(t *testing.T) {
	s, uc := newReplenishFixture(testReplenishCfg)

	// 库存2 < 阈值5,补货量 = 5×2 − 2 = 8
	s.addBook(book.NewBook("9787000000011", "缺货的书", "A", "人民邮电出版社", 5900, 3500, 2, 5, "", "", 1))

	err := uc.Trigger(context.Background(), "9787000000011")
	require.NoError(t, err)

	orders, _, err := (&poRepo{s}).List(context.Background(), purchase.StatusPending, 1, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	po := orders[0]
	assert.Equal(t, "人民邮电出版社", po.Publisher)
	assert.NotEmpty(t, po.PONo)
	require.Len(t, po.Items, 1)
	assert.Equal(t, 8, po.Items[0].Quantity)
	assert.Equal(t, int64(3500), po.Items[0].UnitCost, "单价是进货价快照")
}

func TestReplenish_StockRecoveredNoOrder(t *testing.T) {
	s, uc := newReplenishFixture(testReplenishCfg)

	// 触发时库存已回到阈值之上:不开单
	s.addBook(book.NewBook("9787000000011", "已回补的书", "A", "出版社甲", 5900, 3500, 9, 5, "", "", 1))

	err := uc.Trigger(context.Background(), "9787000000011")
	require.NoError(t, err)
	assert.Equal(t, 0, s.pendingCount())
}

// TestReplenish_CoalescesByPublisher 窗口内同一出版社的触发合并到一张单
func TestReplenish_CoalescesByPublisher(t *testing.T) {
	s, uc := newReplenishFixture(testReplenishCfg)

	s.addBook(book.NewBook("9787000000011", "书甲", "A", "同一出版社", 5900, 3500, 1, 5, "", "", 1))
	s.addBook(book.NewBook("9787000000028", "书乙", "B", "同一出版社", 8800, 5000, 2, 5, "", "", 1))
	s.addBook(book.NewBook("9787000000035", "书丙", "C", "另一出版社", 6600, 4000, 0, 5, "", "", 1))

	ctx := context.Background()
	require.NoError(t, uc.Trigger(ctx, "9787000000011"))
	require.NoError(t, uc.Trigger(ctx, "9787000000028"))
	require.NoError(t, uc.Trigger(ctx, "9787000000035"))

	// 同一出版社两次触发合并,另一出版社单开
	assert.Equal(t, 2, s.pendingCount())

	po, err := (&poRepo{s}).LockOpenByPublisher(ctx, "同一出版社", time.Time{})
	require.NoError(t, err)
	require.Len(t, po.Items, 2, "两本书各占一行")
}

// TestReplenish_RepeatTriggerBumpsQuantity 同一ISBN重复触发只抬数量
func TestReplenish_RepeatTriggerBumpsQuantity(t *testing.T) {
	s, uc := newReplenishFixture(testReplenishCfg)
	s.addBook(book.NewBook("9787000000011", "书甲", "A", "出版社甲", 5900, 3500, 1, 5, "", "", 1))

	ctx := context.Background()
	require.NoError(t, uc.Trigger(ctx, "9787000000011"))
	require.NoError(t, uc.Trigger(ctx, "9787000000011"))

	assert.Equal(t, 1, s.pendingCount(), "不开第二张单")

	po, err := (&poRepo{s}).LockOpenByPublisher(ctx, "出版社甲", time.Time{})
	require.NoError(t, err)
	require.Len(t, po.Items, 1, "同一ISBN不产生重复行")
	// 每次触发补货量 = 5×2 − 1 = 9,两次累加
	assert.Equal(t, 18, po.Items[0].Quantity)
}

// TestReplenish_WindowExpiry 窗口外的旧单不再吸收,开新单
func TestReplenish_WindowExpiry(t *testing.T) {
	s, uc := newReplenishFixture(config.ReplenishConfig{Window: time.Minute, RestockFactor: 2})
	s.addBook(book.NewBook("9787000000011", "书甲", "A", "出版社甲", 5900, 3500, 1, 5, "", "", 1))

	ctx := context.Background()
	require.NoError(t, uc.Trigger(ctx, "9787000000011"))

	// 把已有单的创建时间拨到窗口之外
	s.mu.Lock()
	for _, o := range s.orders {
		o.CreatedAt = time.Now().Add(-2 * time.Minute)
	}
	s.mu.Unlock()

	require.NoError(t, uc.Trigger(ctx, "9787000000011"))
	assert.Equal(t, 2, s.pendingCount(), "过窗后应开新单")
}

// TestReplenish_ConfirmedOrderNotAbsorbing 已确认的单不再吸收触发
func TestReplenish_ConfirmedOrderNotAbsorbing(t *testing.T) {
	s, uc := newReplenishFixture(testReplenishCfg)
	s.addBook(book.NewBook("9787000000011", "书甲", "A", "出版社甲", 5900, 3500, 1, 5, "", "", 1))

	ctx := context.Background()
	require.NoError(t, uc.Trigger(ctx, "9787000000011"))

	// 管理员确认了第一张单
	confirm := NewConfirmUseCase(&poRepo{s}, &poLedger{s}, &poTxManager{s}, nil)
	first, err := (&poRepo{s}).LockOpenByPublisher(ctx, "出版社甲", time.Time{})
	require.NoError(t, err)
	_, err = confirm.Execute(ctx, first.ID)
	require.NoError(t, err)

	// 库存又跌下去,再次触发必须开新单
	s.mu.Lock()
	s.books["9787000000011"].Stock = 1
	s.mu.Unlock()

	require.NoError(t, uc.Trigger(ctx, "9787000000011"))
	assert.Equal(t, 1, s.pendingCount())
}

func TestRestockQuantity(t *testing.T) {
	cfg := config.ReplenishConfig{RestockFactor: 2}

	// 阈值5,库存2 → 补到10的水位,差8本
	assert.Equal(t, 8, cfg.RestockQuantity(5, 2))
	// 水位已够(不该发生,兜底至少1本)
	assert.Equal(t, 1, cfg.RestockQuantity(5, 20))
	// 系数未配置时默认2
	assert.Equal(t, 6, config.ReplenishConfig{}.RestockQuantity(4, 2))
}
