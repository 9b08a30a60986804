// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout は依存先1件あたりの確認時間の上限です。
const checkTimeout = 2 * time.Second

// Check は依存先（DB、Redisなど）の疎通確認です。
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Health はサービスヘルスチェック用の /healthz ハンドラーを返します。
// すべてのCheckが成功すれば200、1件でも失敗すれば503を返し、キャッシュを防止します。
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		failed := map[string]string{}
		for _, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
			if err := check.Fn(ctx); err != nil {
				failed[check.Name] = err.Error()
			}
			cancel()
		}

		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
		}
		if c.Request.Method == http.MethodHead {
			c.Status(status)
			return
		}
		if len(failed) > 0 {
			c.JSON(status, gin.H{"status": "unavailable", "checks": failed})
			return
		}
		c.JSON(status, gin.H{"status": "ok"})
	}
}
