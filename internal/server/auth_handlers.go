package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

const (
	msgBackendUnavailable = "Unable to reach BloodBridge right now. Please try again."
	msgLogoutFailed       = "Logout failed. You are still signed in."
)

func (s *Server) renderLogin(c *gin.Context, status int, form models.Credentials, errs map[string]string) {
	form.Password = ""
	s.render(c, status, "login.html", gin.H{
		"Title":  "Login",
		"Form":   form,
		"Errors": errs,
	})
}

func (s *Server) loginPage(c *gin.Context) {
	s.renderLogin(c, http.StatusOK, models.Credentials{}, nil)
}

// login authenticates against the backend, revalidates the session and
// sends the user home
func (s *Server) login(c *gin.Context) {
	h := mustHandle(c)
	log := s.requestLogger(c)
	ctx := c.Request.Context()

	var form models.Credentials
	if err := c.ShouldBind(&form); err != nil {
		s.renderLogin(c, http.StatusBadRequest, form, map[string]string{"": "Invalid login form"})
		return
	}

	if errs := s.validate(form); len(errs) > 0 {
		s.renderLogin(c, http.StatusBadRequest, form, models.FieldErrors(errs))
		return
	}

	resp, err := h.API.Authenticate(ctx, form)
	if err != nil {
		log.Error().Err(err).Msg("Authenticate request failed")
		s.renderLogin(c, http.StatusBadGateway, form, map[string]string{"": msgBackendUnavailable})
		return
	}
	if resp.HasErrors {
		s.renderLogin(c, http.StatusUnauthorized, form, models.FieldErrors(resp.Errors))
		return
	}
	if !resp.Data {
		s.renderLogin(c, http.StatusUnauthorized, form, map[string]string{"": "Invalid username or password"})
		return
	}

	if err := h.SaveCookies(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to persist backend cookies")
	}
	s.refetch(c, h)

	log.Info().Str("user_name", form.UserName).Msg("User logged in")
	s.redirectWithFlash(c, "/home", "Successfully logged in!")
}

// refetch revalidates the session after an identity-changing action. A
// failure is logged; the guard on the next page decides what to show.
func (s *Server) refetch(c *gin.Context, h *session.Handle) {
	if _, err := h.Provider.RefetchUser(c.Request.Context()); err != nil && !errors.Is(err, session.ErrSuperseded) {
		s.requestLogger(c).Warn().Err(err).Msg("Failed to revalidate session")
	}
}

func (s *Server) renderSignup(c *gin.Context, status int, form models.Registration, errs map[string]string) {
	form.Password = ""
	s.render(c, status, "signup.html", gin.H{
		"Title":  "Sign up",
		"Form":   form,
		"Errors": errs,
	})
}

func (s *Server) signupPage(c *gin.Context) {
	s.renderSignup(c, http.StatusOK, models.Registration{UserType: "Donor"}, nil)
}

// signup registers the account, logs it in and revalidates the session
func (s *Server) signup(c *gin.Context) {
	h := mustHandle(c)
	log := s.requestLogger(c)
	ctx := c.Request.Context()

	var form models.Registration
	if err := c.ShouldBind(&form); err != nil {
		s.renderSignup(c, http.StatusBadRequest, form, map[string]string{"": "Invalid sign-up form"})
		return
	}

	if errs := s.validate(form); len(errs) > 0 {
		s.renderSignup(c, http.StatusBadRequest, form, models.FieldErrors(errs))
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	form.CreateDate = now
	form.UpdateDate = now
	form.LastDonationDate = now

	resp, err := h.API.Register(ctx, form)
	if err != nil {
		log.Error().Err(err).Msg("Register request failed")
		s.renderSignup(c, http.StatusBadGateway, form, map[string]string{"": msgBackendUnavailable})
		return
	}
	if resp.HasErrors {
		s.renderSignup(c, http.StatusBadRequest, form, models.FieldErrors(resp.Errors))
		return
	}

	auth, err := h.API.Authenticate(ctx, models.Credentials{UserName: form.UserName, Password: form.Password})
	if err != nil || auth.HasErrors || !auth.Data {
		log.Warn().Err(err).Str("user_name", form.UserName).Msg("Automatic login after sign-up failed")
		s.redirectWithFlash(c, "/login", "Account created! Please log in.")
		return
	}

	if err := h.SaveCookies(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to persist backend cookies")
	}
	s.refetch(c, h)

	log.Info().Str("user_name", form.UserName).Msg("User signed up")
	s.redirectWithFlash(c, "/home", "Account created! Welcome to BloodBridge.")
}

// logout ends the session. A rejected logout keeps the user signed in and
// says so.
func (s *Server) logout(c *gin.Context) {
	h := mustHandle(c)

	if err := s.sessions.Logout(c.Request.Context(), h); err != nil {
		s.requestLogger(c).Warn().Err(err).Msg("Logout failed")
		s.redirectWithFlash(c, "/home", msgLogoutFailed)
		return
	}

	s.redirectWithFlash(c, "/", "You have been logged out.")
}

// @Summary Read the session state
// @Description Returns the current user, field errors and loading flag of the caller's session
// @Tags session
// @Produce json
// @Success 200 {object} session.State
// @Router /api/session [get]
func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, mustHandle(c).Provider.State())
}

// @Summary Revalidate the session
// @Description Asks the backend who the session belongs to and returns the resulting state
// @Tags session
// @Produce json
// @Success 200 {object} session.State
// @Failure 409 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/session/refetch [post]
func (s *Server) refetchSession(c *gin.Context) {
	h := mustHandle(c)

	state, err := h.Provider.RefetchUser(c.Request.Context())
	switch {
	case errors.Is(err, session.ErrSuperseded):
		respondWithError(c, s.requestLogger(c), http.StatusConflict, err, "Superseded by a newer revalidation")
		return
	case err != nil:
		respondWithError(c, s.requestLogger(c), http.StatusBadGateway, err, "Failed to revalidate session")
		return
	}

	if err := h.SaveCookies(c.Request.Context()); err != nil {
		s.requestLogger(c).Warn().Err(err).Msg("Failed to persist backend cookies")
	}
	c.JSON(http.StatusOK, state)
}

// @Summary Log the session out
// @Tags session
// @Produce json
// @Success 200 {object} session.State
// @Failure 502 {object} map[string]interface{}
// @Router /api/session/logout [post]
func (s *Server) logoutSession(c *gin.Context) {
	h := mustHandle(c)

	if err := s.sessions.Logout(c.Request.Context(), h); err != nil {
		var rejected *session.LogoutRejectedError
		if errors.As(err, &rejected) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":          msgLogoutFailed,
				"backend_status": rejected.Status,
				"state":          h.Provider.State(),
			})
			return
		}
		respondWithError(c, s.requestLogger(c), http.StatusBadGateway, err, msgLogoutFailed)
		return
	}

	c.JSON(http.StatusOK, h.Provider.State())
}
