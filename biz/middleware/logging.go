package middleware

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"

	"github.com/lookloom/media_vault/pkg/common"
)

// Logging returns a middleware that tags each request with an ID and logs
// request and response information.
func Logging() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()

		requestID := string(c.GetHeader("X-Request-Id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = common.ContextWithRequestID(ctx, requestID)
		c.Response.Header.Set("X-Request-Id", requestID)

		c.Next(ctx)

		latency := time.Since(start)
		hlog.CtxInfof(ctx, "[%s] %s %s %s %d %v",
			requestID,
			c.ClientIP(),
			string(c.Request.Method()),
			string(c.Request.URI().Path()),
			c.Response.StatusCode(),
			latency,
		)
	}
}
