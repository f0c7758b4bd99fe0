package purchase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/purchase"
)

// 教学说明：采购单确认/取消用例单元测试
// 确认的幂等性是重点:重复确认返回成功但不二次入库

func newConfirmFixture(t *testing.T) (*poStore, *ConfirmUseCase, *CancelUseCase, uint) {
	t.Helper()
	s := newPOStore()
	s.addBook(book.NewBook("9787000000011", "待补的书", "A", "出版社甲", 5900, 3500, 2, 5, "", "", 1))

	po := purchase.NewOrder(purchase.GeneratePONo(), "出版社甲")
	require.NoError(t, po.AddOrBumpItem(purchase.Item{
		BookID:   1,
		ISBN:     "9787000000011",
		Title:    "待补的书",
		Quantity: 8,
		UnitCost: 3500,
	}))
	require.NoError(t, (&poRepo{s}).Create(context.Background(), po))

	confirm := NewConfirmUseCase(&poRepo{s}, &poLedger{s}, &poTxManager{s}, nil)
	cancel := NewCancelUseCase(&poRepo{s}, &poTxManager{s}, nil)
	return s, confirm, cancel, po.ID
}

func stockOf(s *poStore, isbn string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.books[isbn].Stock
}

func TestConfirm_AddsStockOnce(t *testing.T) {
	s, confirm, _, poID := newConfirmFixture(t)
	ctx := context.Background()

	resp, err := confirm.Execute(ctx, poID)
	require.NoError(t, err)
	assert.False(t, resp.AlreadyConfirmed)
	assert.Equal(t, "已确认", resp.Status)
	assert.NotEmpty(t, resp.ConfirmedAt)

	// 2 + 8 = 10
	assert.Equal(t, 10, stockOf(s, "9787000000011"))
}

// TestConfirm_Idempotent 重复确认:无操作成功,库存不变
func TestConfirm_Idempotent(t *testing.T) {
	s, confirm, _, poID := newConfirmFixture(t)
	ctx := context.Background()

	_, err := confirm.Execute(ctx, poID)
	require.NoError(t, err)
	require.Equal(t, 10, stockOf(s, "9787000000011"))

	resp, err := confirm.Execute(ctx, poID)
	require.NoError(t, err, "重复确认按成功处理")
	assert.True(t, resp.AlreadyConfirmed)
	assert.Equal(t, 10, stockOf(s, "9787000000011"), "不能二次入库")
}

// TestConfirm_Concurrent 并发确认同一张单:恰好入库一次
func TestConfirm_Concurrent(t *testing.T) {
	s, confirm, _, poID := newConfirmFixture(t)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := confirm.Execute(context.Background(), poID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, stockOf(s, "9787000000011"), "并发确认只有一次真正入库")
}

func TestConfirm_CancelledIsTerminal(t *testing.T) {
	s, confirm, cancel, poID := newConfirmFixture(t)
	ctx := context.Background()

	require.NoError(t, cancel.Execute(ctx, poID))

	_, err := confirm.Execute(ctx, poID)
	assert.ErrorIs(t, err, purchase.ErrTerminalState)
	assert.Equal(t, 2, stockOf(s, "9787000000011"), "取消的单确认不入库")
}

func TestCancel_Rules(t *testing.T) {
	ctx := context.Background()

	t.Run("待确认可取消且不动库存", func(t *testing.T) {
		s, _, cancel, poID := newConfirmFixture(t)
		require.NoError(t, cancel.Execute(ctx, poID))

		stored, err := (&poRepo{s}).FindByID(ctx, poID)
		require.NoError(t, err)
		assert.Equal(t, purchase.StatusCancelled, stored.Status)
		assert.Equal(t, 2, stockOf(s, "9787000000011"))
	})

	t.Run("已确认不可取消", func(t *testing.T) {
		_, confirm, cancel, poID := newConfirmFixture(t)
		_, err := confirm.Execute(ctx, poID)
		require.NoError(t, err)

		err = cancel.Execute(ctx, poID)
		assert.ErrorIs(t, err, purchase.ErrTerminalState)
	})

	t.Run("不存在的单", func(t *testing.T) {
		_, _, cancel, _ := newConfirmFixture(t)
		err := cancel.Execute(ctx, 999)
		assert.ErrorIs(t, err, purchase.ErrOrderNotFound)
	})
}
