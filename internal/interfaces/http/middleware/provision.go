package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hamkkebu/transaction-service/internal/application/sync"
)

// JITProvisioningMiddleware provisions a user replica for the
// authenticated user when the registration event has not arrived yet.
// Must run after JWT authentication. Provisioning failures never block
// the request; ownership checks downstream still apply.
func JITProvisioningMiddleware(provisioner *sync.UserProvisioner, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetJWTUserID(c)
		if userID == 0 {
			c.Next()
			return
		}

		if err := provisioner.EnsureUser(c.Request.Context(), userID); err != nil {
			if logger != nil {
				logger.Warn("JIT user provisioning failed",
					zap.Int64("user_id", userID),
					zap.Error(err))
			}
		}

		c.Next()
	}
}
