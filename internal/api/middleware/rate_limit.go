package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/response"
)

// RateLimit 固定窗口限流，按客户端 IP 计数
// Redis 不可用时放行，限流不能拖垮主流程
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig) gin.HandlerFunc {
	window := time.Duration(cfg.WindowSeconds) * time.Second

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := context.Background()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(cfg.Requests) {
			response.RateLimited(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
