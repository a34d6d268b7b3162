package middleware

import (
	"github.com/gin-gonic/gin"

	"jobquote/internal/core/apperror"
	"jobquote/internal/core/security"
)

// RequireCapability checks the caller against authz before the handler runs.
// Workflow transitions are checked by the workflow service, since the capability depends on the target.
func RequireCapability(authz security.Authorizer, action security.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		principal := security.PrincipalFromContext(ctx)
		if principal.IsZero() {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if err := security.Require(ctx, authz, principal, action); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Next()
	}
}
