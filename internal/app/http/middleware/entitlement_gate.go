package middleware

import (
	"net/http"
	"time"

	"quizzq-backend/internal/domain/entitlement"
	"quizzq-backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequirePro guards paid-only routes. It runs after AuthMiddleware and reads
// the caller's email from the context. A stale "active" record found expired
// is reset in place before the request is denied, so the store self-heals the
// first time the stale record is observed.
func RequirePro(store entitlement.Store, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		decision, err := entitlement.Check(store, email, time.Now())
		if err != nil {
			log.Errorw("pro_gate_error", "email", email, "error", err.Error())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal server error",
			})
			return
		}

		switch decision {
		case entitlement.Allow:
			metrics.GateDecisions.WithLabelValues("allowed").Inc()
			c.Next()
		case entitlement.DenyUnauthenticated:
			metrics.GateDecisions.WithLabelValues("unauthenticated").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": decision.Message(),
			})
		case entitlement.DenyExpired:
			metrics.GateDecisions.WithLabelValues("expired").Inc()
			log.Infow("entitlement_expired_reset", "email", email)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": decision.Message(),
			})
		default:
			metrics.GateDecisions.WithLabelValues("not_pro").Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": decision.Message(),
			})
		}
	}
}
