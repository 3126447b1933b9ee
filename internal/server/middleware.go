package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/guard"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

const (
	requestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	handleKey    = "session"
	stateKey     = "session_state"
)

// requestIDMiddleware tags every request with an id, reusing the caller's
// when it sends one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		event := s.logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		if h, ok := getHandle(c); ok {
			event = event.Str("session_id", h.ID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("HTTP request")
	}
}

// requestLogger returns the server logger scoped to the current request
func (s *Server) requestLogger(c *gin.Context) *zerolog.Logger {
	ctx := s.logger.With().Str("request_id", c.GetString(requestIDKey))
	if h, ok := getHandle(c); ok {
		ctx = ctx.Str("session_id", h.ID)
	}
	log := ctx.Logger()
	return &log
}

func getHandle(c *gin.Context) (*session.Handle, bool) {
	v, exists := c.Get(handleKey)
	if !exists {
		return nil, false
	}
	h, ok := v.(*session.Handle)
	return h, ok
}

// mustHandle returns the session handle set by sessionMiddleware
func mustHandle(c *gin.Context) *session.Handle {
	h, ok := getHandle(c)
	if !ok {
		panic("session middleware not installed")
	}
	return h
}

// guardedState returns the state the guard admitted the request on
func guardedState(c *gin.Context) session.State {
	if v, ok := c.Get(stateKey); ok {
		if state, ok := v.(session.State); ok {
			return state
		}
	}
	return mustHandle(c).Provider.State()
}

// sessionMiddleware binds the request to its browser session, issuing a
// new session cookie when the request carries no valid one
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := s.requestLogger(c)

		var id string
		if raw, err := c.Cookie(s.config.Session.CookieName); err == nil && raw != "" {
			if parsed, err := s.tokens.Parse(raw); err == nil {
				id = parsed
			} else {
				log.Debug().Err(err).Msg("Discarding invalid session cookie")
			}
		}

		if id == "" {
			id = session.NewID()
			token, err := s.tokens.Issue(id, time.Now())
			if err != nil {
				log.Error().Err(err).Msg("Failed to issue session cookie")
				s.renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(s.config.Session.CookieName, token, int(s.config.Session.TTL.Seconds()), "/", "", s.secureCookies(), true)
		}

		h, err := s.sessions.Open(c.Request.Context(), id)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open session")
			s.renderError(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
			c.Abort()
			return
		}

		c.Set(handleKey, h)
		c.Next()
	}
}

func (s *Server) secureCookies() bool {
	return s.config.App.Environment == "production"
}

// guardMiddleware admits, redirects, or renders nothing according to g.
// While the session is still revalidating it waits for state changes up to
// the configured guard wait.
func (s *Server) guardMiddleware(g guard.Func) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := mustHandle(c)

		decision, state := guard.Await(c.Request.Context(), h.Provider, g, s.config.Session.GuardWait)
		switch decision.Kind {
		case guard.Pending:
			s.requestLogger(c).Debug().Msg("Session still loading, rendering nothing")
			c.AbortWithStatus(http.StatusNoContent)
		case guard.Redirect:
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		default:
			c.Set(stateKey, state)
			c.Next()
		}
	}
}

// loginRateLimit throttles login attempts per client IP
func (s *Server) loginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP(), time.Now()) {
			s.requestLogger(c).Warn().Str("client_ip", c.ClientIP()).Msg("Login rate limit exceeded")
			c.Header("Retry-After", "60")
			s.renderLogin(c, http.StatusTooManyRequests, models.Credentials{}, map[string]string{
				"": "Too many login attempts. Please wait a minute and try again.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func respondWithError(c *gin.Context, log *zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}
