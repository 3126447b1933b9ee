package server

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

const flashCookie = "bb_flash"

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"bloodGroups": func() []string { return models.BloodGroups },
		"field": func(errs map[string]string, name string) string {
			return errs[name]
		},
		"dateInput": func(s string) string {
			// datetime-local inputs take yyyy-mm-ddThh:mm
			if len(s) > 16 {
				return s[:16]
			}
			return s
		},
		"statusClass": func(status string) string {
			return "status-" + strings.ToLower(status)
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

// navData drives the navigation bar
type navData struct {
	User    *models.User
	Loading bool
}

func (n navData) IsAdmin() bool {
	return n.User != nil && n.User.Role.IsAdmin()
}

// nav reads identity for the navigation bar. While the session is still
// revalidating it falls back to the stored snapshot.
func (s *Server) nav(c *gin.Context) navData {
	h, ok := getHandle(c)
	if !ok {
		return navData{}
	}

	state := h.Provider.State()
	if _, guarded := c.Get(stateKey); guarded {
		state = guardedState(c)
	}
	if !state.Loading || state.User != nil {
		return navData{User: state.User, Loading: state.Loading}
	}

	cached, err := session.LoadSnapshot(c.Request.Context(), s.store, h.ID)
	if err != nil {
		s.requestLogger(c).Warn().Err(err).Msg("Failed to read user snapshot")
	}
	return navData{User: cached, Loading: true}
}

// render writes a full page, adding the data every layout needs
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Nav"] = s.nav(c)
	data["Flash"] = s.takeFlash(c)
	data["Version"] = s.version
	data["Build"] = s.config.App.BuildNumber
	c.HTML(status, name, data)
}

func (s *Server) renderError(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
		"Nav":     navData{},
		"Version": s.version,
		"Build":   s.config.App.BuildNumber,
	})
}

func (s *Server) setFlash(c *gin.Context, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, message, 60, "/", "", s.secureCookies(), true)
}

func (s *Server) takeFlash(c *gin.Context) string {
	message, err := c.Cookie(flashCookie)
	if err != nil || message == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", s.secureCookies(), true)
	return message
}

// redirectWithFlash redirects after a form post, carrying a one-time message
func (s *Server) redirectWithFlash(c *gin.Context, location, message string) {
	if message != "" {
		s.setFlash(c, message)
	}
	c.Redirect(http.StatusFound, location)
}
