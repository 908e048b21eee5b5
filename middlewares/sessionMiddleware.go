package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/quotelane/cpq_backend/utils"
)

// SessionMiddleware attaches the tenant and user identity that the edge
// auth layer resolved into headers. Authentication itself happens upstream;
// this service only scopes queries by what it is handed.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if tenantId := c.GetHeader("x-tenant-id"); tenantId != "" {
			ctx = utils.SetTenantIdInContext(ctx, tenantId)
		}
		if userId := c.GetHeader("x-user-id"); userId != "" {
			ctx = utils.SetUserIdInContext(ctx, userId)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
