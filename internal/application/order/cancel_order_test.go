package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/cart"
	"github.com/xiebiao/bookmall/internal/domain/order"
)

// 教学说明：取消订单用例单元测试
// 关键点:取消必须把每行数量原数退回库存,且只有
// 待处理/处理中的订单可以取消

func newCancelFixture() (*memStore, *CheckoutUseCase, *CancelOrderUseCase) {
	s := newMemStore()
	checkout := NewCheckoutUseCase(
		&memCartRepo{s},
		&memBookRepo{s},
		&memOrderRepo{s},
		&memLedger{s},
		&memTxManager{s},
		nil,
		nil,
	)
	cancel := NewCancelOrderUseCase(
		&memOrderRepo{s},
		&memLedger{s},
		&memTxManager{s},
		nil,
	)
	return s, checkout, cancel
}

// placeOrder 下一单作为测试前置
func placeOrder(t *testing.T, s *memStore, checkout *CheckoutUseCase, userID uint) uint {
	t.Helper()
	s.addCart(userID,
		cart.Item{ISBN: "9787000000011", Quantity: 2},
		cart.Item{ISBN: "9787000000028", Quantity: 3},
	)
	resp, err := checkout.Execute(context.Background(), checkoutReq(userID))
	require.NoError(t, err)
	return resp.OrderID
}

func seedCancelBooks(s *memStore) {
	s.addBook(book.NewBook("9787000000011", "书甲", "A", "出版社甲", 5900, 3500, 10, 0, "", "", 1))
	s.addBook(book.NewBook("9787000000028", "书乙", "B", "出版社乙", 8800, 5000, 10, 0, "", "", 1))
}

func TestCancelOrder_RestoresStock(t *testing.T) {
	s, checkout, cancel := newCancelFixture()
	seedCancelBooks(s)
	orderID := placeOrder(t, s, checkout, 100)

	require.Equal(t, 8, s.stockOf("9787000000011"))
	require.Equal(t, 7, s.stockOf("9787000000028"))

	err := cancel.Execute(context.Background(), orderID, 100, false)
	require.NoError(t, err)

	// 每行原数退库
	assert.Equal(t, 10, s.stockOf("9787000000011"))
	assert.Equal(t, 10, s.stockOf("9787000000028"))

	stored, err := (&memOrderRepo{s}).FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, stored.Status)
}

func TestCancelOrder_Ownership(t *testing.T) {
	s, checkout, cancel := newCancelFixture()
	seedCancelBooks(s)
	orderID := placeOrder(t, s, checkout, 100)

	t.Run("他人不能取消", func(t *testing.T) {
		err := cancel.Execute(context.Background(), orderID, 200, false)
		assert.ErrorIs(t, err, order.ErrUnauthorized)
		assert.Equal(t, 8, s.stockOf("9787000000011"), "库存不应变化")
	})

	t.Run("管理员可以取消任何订单", func(t *testing.T) {
		err := cancel.Execute(context.Background(), orderID, 200, true)
		assert.NoError(t, err)
		assert.Equal(t, 10, s.stockOf("9787000000011"))
	})
}

func TestCancelOrder_StatusRules(t *testing.T) {
	s, checkout, cancel := newCancelFixture()
	seedCancelBooks(s)
	update := NewUpdateStatusUseCase(&memOrderRepo{s})

	t.Run("处理中仍可取消", func(t *testing.T) {
		orderID := placeOrder(t, s, checkout, 100)
		require.NoError(t, update.Execute(context.Background(), UpdateStatusRequest{OrderID: orderID, Status: int(order.StatusProcessing)}))

		err := cancel.Execute(context.Background(), orderID, 100, false)
		assert.NoError(t, err)
	})

	t.Run("发货后拒绝取消", func(t *testing.T) {
		orderID := placeOrder(t, s, checkout, 101)
		require.NoError(t, update.Execute(context.Background(), UpdateStatusRequest{OrderID: orderID, Status: int(order.StatusProcessing)}))
		require.NoError(t, update.Execute(context.Background(), UpdateStatusRequest{OrderID: orderID, Status: int(order.StatusShipped)}))

		before := s.stockOf("9787000000011")
		err := cancel.Execute(context.Background(), orderID, 101, false)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
		assert.Equal(t, before, s.stockOf("9787000000011"), "拒绝取消时库存不动")
	})

	t.Run("重复取消被拒绝", func(t *testing.T) {
		orderID := placeOrder(t, s, checkout, 102)
		require.NoError(t, cancel.Execute(context.Background(), orderID, 102, false))

		before := s.stockOf("9787000000011")
		err := cancel.Execute(context.Background(), orderID, 102, false)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
		assert.Equal(t, before, s.stockOf("9787000000011"), "二次取消不能重复退库")
	})
}

func TestCancelOrder_NotFound(t *testing.T) {
	_, _, cancel := newCancelFixture()

	err := cancel.Execute(context.Background(), 999, 100, false)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
