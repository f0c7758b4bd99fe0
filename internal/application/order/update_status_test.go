package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmall/internal/domain/order"
)

// 教学说明：订单状态流转用例单元测试
// 状态机:待处理 → 处理中 → 已发货 → 已送达
// 取消不走这个用例(涉及库存回补,有专门的取消用例)

func newStatusFixture(t *testing.T) (*memStore, *UpdateStatusUseCase, uint) {
	t.Helper()
	s, checkout, _ := newCancelFixture()
	seedCancelBooks(s)
	orderID := placeOrder(t, s, checkout, 100)
	return s, NewUpdateStatusUseCase(&memOrderRepo{s}), orderID
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	s, uc, orderID := newStatusFixture(t)
	ctx := context.Background()

	for _, target := range []order.Status{
		order.StatusProcessing,
		order.StatusShipped,
		order.StatusDelivered,
	} {
		err := uc.Execute(ctx, UpdateStatusRequest{OrderID: orderID, Status: int(target)})
		require.NoError(t, err, "流转到%s应成功", target)

		stored, err := (&memOrderRepo{s}).FindByID(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, target, stored.Status)
	}
}

func TestUpdateStatus_IllegalTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("不允许跳级", func(t *testing.T) {
		_, uc, orderID := newStatusFixture(t)
		// 待处理直接到已发货
		err := uc.Execute(ctx, UpdateStatusRequest{OrderID: orderID, Status: int(order.StatusShipped)})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("不允许回退", func(t *testing.T) {
		_, uc, orderID := newStatusFixture(t)
		require.NoError(t, uc.Execute(ctx, UpdateStatusRequest{OrderID: orderID, Status: int(order.StatusProcessing)}))

		err := uc.Execute(ctx, UpdateStatusRequest{OrderID: orderID, Status: int(order.StatusPending)})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("已送达是终态", func(t *testing.T) {
		_, uc, orderID := newStatusFixture(t)
		for _, st := range []order.Status{order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
			require.NoError(t, uc.Execute(ctx, UpdateStatusRequest{OrderID: orderID, Status: int(st)}))
		}

		err := uc.Execute(ctx, UpdateStatusRequest{OrderID: orderID, Status: int(order.StatusProcessing)})
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
	})

	t.Run("取消必须走取消接口", func(t *testing.T) {
		_, uc, orderID := newStatusFixture(t)
		err := uc.Execute(ctx, UpdateStatusRequest{OrderID: orderID, Status: int(order.StatusCancelled)})
		assert.Error(t, err)
	})

	t.Run("无效状态码", func(t *testing.T) {
		_, uc, orderID := newStatusFixture(t)
		err := uc.Execute(ctx, UpdateStatusRequest{OrderID: orderID, Status: 42})
		assert.Error(t, err)
	})
}
