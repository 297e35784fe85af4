package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"vatshop/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ctxKey string

const (
	sessionCtxKey ctxKey = "session"
	accountCtxKey ctxKey = "account_id"

	sessionCookie = "session_token"
	sessionHeader = "X-Session-Token"
)

// sessionMiddleware loads or issues the visitor session and persists it once
// the handler has run.
func sessionMiddleware(svc sessionService, logger *zap.Logger, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(sessionHeader)
		if token == "" {
			token, _ = c.Cookie(sessionCookie)
		}
		sess, err := svc.Load(c.Request.Context(), token)
		if err != nil {
			writeError(c, logger, err)
			c.Abort()
			return
		}
		if sess.Token != token {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sess.Token, int(svc.TTL()/time.Second), "/", "", secure, true)
		}
		c.Header(sessionHeader, sess.Token)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionCtxKey, sess))

		c.Next()

		if err := svc.Save(c.Request.Context(), sess); err != nil {
			logger.Error("save session", zap.Error(err))
		}
	}
}

// authMiddleware resolves a bearer token to an account id. When required is
// false a missing token is allowed, but a bad one is still rejected.
func authMiddleware(svc accountService, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
				return
			}
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization header"})
			return
		}
		accountID, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), accountCtxKey, accountID))
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *domain.Session {
	sess, _ := c.Request.Context().Value(sessionCtxKey).(*domain.Session)
	return sess
}

func accountFrom(c *gin.Context) *string {
	id, ok := c.Request.Context().Value(accountCtxKey).(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}
