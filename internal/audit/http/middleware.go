package http

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/medmarket/phiguard/internal/audit/domain"
)

// RequestMetaMiddleware stores the request ID, client IP and user agent in the
// request context so audit entries written further down can be completed.
// It must run after the requestid middleware.
func RequestMetaMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auditDomain.WithRequestMeta(c.Request.Context(), auditDomain.RequestMeta{
			RequestID: requestid.Get(c),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
