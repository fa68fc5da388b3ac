package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/altklausuren/internal/app/models/dto"
	"github.com/yigit/altklausuren/internal/app/services"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
	"github.com/yigit/altklausuren/internal/pkg/auth"
	"github.com/yigit/altklausuren/internal/pkg/logger"
	"github.com/yigit/altklausuren/internal/pkg/session"
)

const sessionContextKey = "session"

// CookieConfig controls the session cookie attributes
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionMiddleware resolves the session cookie into a live session
type SessionMiddleware struct {
	tokens      *auth.SessionTokenService
	authService services.AuthService
	cookie      CookieConfig
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(tokens *auth.SessionTokenService, authService services.AuthService, cookie CookieConfig) *SessionMiddleware {
	return &SessionMiddleware{
		tokens:      tokens,
		authService: authService,
		cookie:      cookie,
	}
}

// LoadSession attaches the caller's session to the context when the cookie
// is valid. Requests without one continue anonymously.
func (m *SessionMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookie.Name)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sessionID, err := m.tokens.Parse(token)
		if err != nil {
			logger.Debug().Err(err).Msg("Ignoring invalid session cookie")
			c.Next()
			return
		}

		sess, err := m.authService.CurrentSession(c.Request.Context(), sessionID)
		switch {
		case err == nil:
			c.Set(sessionContextKey, sess)
		case errors.Is(err, apperrors.ErrSessionRequired):
		default:
			logger.Warn().Err(err).Msg("Session lookup failed")
		}
		c.Next()
	}
}

// RequireSession rejects requests without an active session
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.MessageResponse{
				Message: apperrors.ErrSessionRequired.Message,
			})
			return
		}
		c.Next()
	}
}

// IssueCookie signs the session id and sets it as an HttpOnly cookie
func (m *SessionMiddleware) IssueCookie(c *gin.Context, sess *session.Session) error {
	token, err := m.tokens.Sign(sess.ID, sess.ExpiresAt)
	if err != nil {
		return err
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, token, maxAge, "/", "", m.cookie.Secure, true)
	return nil
}

// ClearCookie expires the session cookie on the client
func (m *SessionMiddleware) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, "", -1, "/", "", m.cookie.Secure, true)
}

// SessionFromContext returns the session loaded by LoadSession
func SessionFromContext(c *gin.Context) (*session.Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok && sess != nil
}
