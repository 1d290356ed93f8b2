package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sentrakoop/sentra/internal/authorization"
	"github.com/sentrakoop/sentra/internal/claims"
	"go.uber.org/zap"
)

const (
	contextClaimsKey    = "claims"
	contextRequestIDKey = "request_id"
)

// RequestID propagates an inbound X-Request-Id or mints a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(contextRequestIDKey, requestID)
		c.Header("X-Request-Id", requestID)
		c.Next()
	}
}

// RequestLogging emits one structured line per request. Error type and
// code come from the same mapping the error middleware uses, so logs
// and responses never disagree about what went wrong.
func RequestLogging(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(contextRequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			errorType, errorCode := classifyErrorForLog(lastErr.Err)
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
		}

		switch {
		case route == "/metrics" || route == "/health":
			log.Debug("http_request", fields...)
		case status >= http.StatusInternalServerError:
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthRequired authenticates the bearer token and stores the resulting
// claims snapshot on the request.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextClaimsKey, actor)
		c.Next()
	}
}

// OptionalAuth resolves claims when a valid token is present and lets
// anonymous requests through. A bad token is still rejected: silently
// downgrading a caller to UMUM prices would mask client bugs.
func (s *Server) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		actor, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextClaimsKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) *claims.Claims {
	value, ok := c.Get(contextClaimsKey)
	if !ok {
		return nil
	}
	actor, ok := value.(*claims.Claims)
	if !ok {
		return nil
	}
	return actor
}

// authorizeKoperasiAction checks the casbin policy for the koperasi
// named by the :id route param. Services re-check ownership themselves.
func (s *Server) authorizeKoperasiAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		if actor == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		koperasiID := strings.TrimSpace(c.Param("id"))
		subject := "user:" + actor.UserID.String()
		if err := s.authzSvc.Authorize(c.Request.Context(), subject, koperasiID, object, action); err != nil {
			if err == authorization.ErrInvalidKoperasi || err == authorization.ErrInvalidActor {
				AbortWithError(c, invalidRequestError())
				return
			}
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// ApplyRateLimit throttles membership applications per user.
func (s *Server) ApplyRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.applyLimiter == nil || !s.applyLimiter.Enabled() {
			c.Next()
			return
		}

		actor := actorFrom(c)
		if actor == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if !s.applyLimiter.AllowUser(c.Request.Context(), actor.UserID.String()) {
			s.metrics.RecordRateLimitDenied("membership.apply")
			AbortWithError(c, ErrTooManyApplies)
			return
		}
		s.metrics.RecordRateLimitAllowed("membership.apply")
		c.Next()
	}
}
