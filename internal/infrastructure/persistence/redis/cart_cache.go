package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// 购物车视图缓存的TTL
// 缓存的是含建议库存的渲染结果,库存随时在变,所以TTL很短;
// 购物车本身的任何写操作都会主动失效
const cartCacheTTL = 30 * time.Second

// CartCache 购物车视图缓存
// 设计说明:
// 1. 缓存GET /cart的渲染结果(JSON),而非领域对象:
//    读多写少的接口,省去每次查库+逐行查库存
// 2. 库存提示本来就是建议性的(下单时才真正校验),
//    短暂的缓存过期不影响正确性
// 3. Key设计: cart:view:{user_id}
type CartCache struct {
	client *redis.Client
}

// NewCartCache 创建购物车缓存
func NewCartCache(client *redis.Client) *CartCache {
	return &CartCache{client: client}
}

func cartViewKey(userID uint) string {
	return fmt.Sprintf("cart:view:%d", userID)
}

// Get 读取缓存的购物车视图,未命中返回(false, nil)
// 缓存未配置(nil)时一律按未命中处理
func (c *CartCache) Get(ctx context.Context, userID uint, dest interface{}) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, cartViewKey(userID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Wrap(err, "读取购物车缓存失败")
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// 缓存内容损坏按未命中处理,顺手删掉
		c.client.Del(ctx, cartViewKey(userID))
		return false, nil
	}

	return true, nil
}

// Set 写入购物车视图缓存
func (c *CartCache) Set(ctx context.Context, userID uint, view interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(view)
	if err != nil {
		return apperrors.Wrap(err, "序列化购物车视图失败")
	}

	if err := c.client.Set(ctx, cartViewKey(userID), data, cartCacheTTL).Err(); err != nil {
		return apperrors.Wrap(err, "写入购物车缓存失败")
	}

	return nil
}

// Invalidate 失效购物车缓存(购物车的任何写操作后调用)
func (c *CartCache) Invalidate(ctx context.Context, userID uint) error {
	if c == nil || c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, cartViewKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, "失效购物车缓存失败")
	}
	return nil
}
