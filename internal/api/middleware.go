package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/victornm/trivia/internal/domain"
	"github.com/victornm/trivia/internal/errors"
	"github.com/victornm/trivia/internal/telemetry"
)

const (
	identityKey = "identity"
	targetKey   = "target"
)

func (a *API) authenticate(c *gin.Context) {
	id, err := a.auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		deny(c, err)
		return
	}

	c.Set(identityKey, id)
	c.Next()
}

func (a *API) requireAdmin(c *gin.Context) {
	if err := a.auth.RequireAdmin(identity(c)); err != nil {
		deny(c, err)
		return
	}

	c.Next()
}

// guardSelfTarget resolves the account named by the param and rejects the caller acting on itself.
func (a *API) guardSelfTarget(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, err := a.auth.GuardSelfTarget(c.Request.Context(), identity(c), c.Param(param))
		if err != nil {
			deny(c, err)
			return
		}

		c.Set(targetKey, target)
		c.Next()
	}
}

func identity(c *gin.Context) domain.Identity {
	id, _ := c.MustGet(identityKey).(domain.Identity)
	return id
}

func target(c *gin.Context) *domain.Account {
	t, _ := c.MustGet(targetKey).(*domain.Account)
	return t
}

func deny(c *gin.Context, err error) {
	telemetry.AuthDenied.WithLabelValues(string(errors.Convert(err).Kind)).Inc()
	abortWithError(c, err)
}

func abortWithError(c *gin.Context, err error) {
	e := errors.Convert(err)
	if e.Code == errors.CodeInternal || e.Code == errors.CodeUnavailable {
		slog.ErrorContext(c.Request.Context(), "api: request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", e,
		)
	}

	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}

// Logger logs one line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		slog.InfoContext(c.Request.Context(), "api: request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
