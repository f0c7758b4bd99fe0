package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookmall/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// 记录请求总数(按方法/路径/状态码)、耗时分布、在途请求数
// 路径用路由模板(c.FullPath)而非原始URL,避免/orders/123这类
// 高基数标签撑爆Prometheus
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.HTTPRequestsTotal == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			// 未匹配到路由(404)
			path = "unmatched"
		}

		metrics.IncGauge(metrics.HTTPRequestsInProgress)
		start := time.Now()

		c.Next()

		metrics.DecGauge(metrics.HTTPRequestsInProgress)

		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, time.Since(start).Seconds())

		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		})
	}
}
