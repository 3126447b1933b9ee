package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/backend"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/dashboard"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

const dateInputLayout = "2006-01-02T15:04"

// normalizeDate turns a datetime-local form value into RFC 3339
func normalizeDate(value string) (string, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	t, err := time.Parse(dateInputLayout, value)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(time.RFC3339), nil
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) homePage(c *gin.Context) {
	state := guardedState(c)
	s.render(c, http.StatusOK, "home.html", gin.H{
		"Title": "Home",
		"User":  state.User,
	})
}

func (s *Server) userPage(c *gin.Context) {
	state := guardedState(c)
	s.render(c, http.StatusOK, "user.html", gin.H{
		"Title":  "My account",
		"User":   state.User,
		"Errors": models.FieldErrors(state.Errors),
	})
}

func (s *Server) loadHospitals(c *gin.Context, api *backend.Client) []models.Hospital {
	hospitals, err := api.ListHospitals(c.Request.Context())
	if err != nil {
		s.requestLogger(c).Warn().Err(err).Msg("Failed to load hospitals")
		return []models.Hospital{}
	}
	return hospitals
}

func (s *Server) renderDonation(c *gin.Context, status int, form models.AppointmentForm, errs map[string]string) {
	h := mustHandle(c)
	s.render(c, status, "donation.html", gin.H{
		"Title":     "Donate blood",
		"User":      guardedState(c).User,
		"Hospitals": s.loadHospitals(c, h.API),
		"Form":      form,
		"Errors":    errs,
	})
}

func (s *Server) donationPage(c *gin.Context) {
	s.renderDonation(c, http.StatusOK, models.AppointmentForm{}, nil)
}

// scheduleDonation books a pending donation appointment for the current user
func (s *Server) scheduleDonation(c *gin.Context) {
	h := mustHandle(c)
	user := guardedState(c).User

	var form models.AppointmentForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderDonation(c, http.StatusBadRequest, form, map[string]string{"": "Please fill all fields, choose a hospital and date."})
		return
	}
	if errs := s.validate(form); len(errs) > 0 {
		s.renderDonation(c, http.StatusBadRequest, form, models.FieldErrors(errs))
		return
	}

	date, err := normalizeDate(form.Date)
	if err != nil {
		s.renderDonation(c, http.StatusBadRequest, form, map[string]string{"date": "Date is invalid"})
		return
	}

	form.UserID = user.ID
	form.Date = date
	form.AppointmentType = models.AppointmentTypeDonation
	form.Status = models.AppointmentPending

	if err := h.API.CreateAppointment(c.Request.Context(), form); err != nil {
		s.requestLogger(c).Error().Err(err).Msg("Failed to create appointment")
		s.renderDonation(c, http.StatusBadGateway, form, map[string]string{"": "There was a problem saving your appointment."})
		return
	}

	s.requestLogger(c).Info().Int64("user_id", user.ID).Int64("hospital_id", form.HospitalID).Msg("Donation appointment scheduled")
	s.redirectWithFlash(c, "/profile", "Appointment request submitted.")
}

func (s *Server) renderRequest(c *gin.Context, status int, form models.BloodRequest, errs map[string]string) {
	h := mustHandle(c)
	log := s.requestLogger(c)

	inventory, err := h.API.ListInventory(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load inventory")
		inventory = []models.InventoryRow{}
	}

	selected := c.Query("bloodType")
	s.render(c, status, "request.html", gin.H{
		"Title":        "Request blood",
		"Hospitals":    s.loadHospitals(c, h.API),
		"BloodOptions": dashboard.BloodOptions(inventory),
		"Selected":     selected,
		"Availability": dashboard.Availability(inventory, selected),
		"Form":         form,
		"Errors":       errs,
	})
}

func (s *Server) requestPage(c *gin.Context) {
	s.renderRequest(c, http.StatusOK, models.BloodRequest{}, nil)
}

// submitRequest files a pending blood request
func (s *Server) submitRequest(c *gin.Context) {
	h := mustHandle(c)

	var form models.BloodRequest
	if err := c.ShouldBind(&form); err != nil {
		s.renderRequest(c, http.StatusBadRequest, form, map[string]string{"": "Invalid request form"})
		return
	}
	if errs := s.validate(form); len(errs) > 0 {
		s.renderRequest(c, http.StatusBadRequest, form, models.FieldErrors(errs))
		return
	}

	form.RequestState = "pending"
	if err := h.API.CreateBloodRequest(c.Request.Context(), form); err != nil {
		s.requestLogger(c).Error().Err(err).Msg("Failed to submit blood request")
		s.renderRequest(c, http.StatusBadGateway, form, map[string]string{"": "There was a problem submitting your request."})
		return
	}

	s.redirectWithFlash(c, "/request", "Your request has been submitted.")
}

// myAppointments lists the appointments of the current user
func (s *Server) myAppointments(ctx context.Context, api *backend.Client, userID int64) ([]models.Appointment, error) {
	all, err := api.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.AppointmentsFor(all, userID), nil
}

func (s *Server) renderProfile(c *gin.Context, status int, form models.ProfileUpdate, errs map[string]string) {
	h := mustHandle(c)
	user := guardedState(c).User

	appointments, err := s.myAppointments(c.Request.Context(), h.API, user.ID)
	if err != nil {
		s.requestLogger(c).Warn().Err(err).Msg("Failed to load appointments")
		appointments = []models.Appointment{}
	}

	s.render(c, status, "profile.html", gin.H{
		"Title":        "Profile",
		"User":         user,
		"Appointments": appointments,
		"Hospitals":    s.loadHospitals(c, h.API),
		"Form":         form,
		"Errors":       errs,
	})
}

func (s *Server) profilePage(c *gin.Context) {
	user := guardedState(c).User
	s.renderProfile(c, http.StatusOK, models.ProfileUpdate{
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Address:     user.Address,
		BloodType:   user.BloodType,
	}, nil)
}

// updateProfile saves the edited profile and revalidates the session so
// every consumer sees the new identity
func (s *Server) updateProfile(c *gin.Context) {
	h := mustHandle(c)

	var form models.ProfileUpdate
	if err := c.ShouldBind(&form); err != nil {
		s.renderProfile(c, http.StatusBadRequest, form, map[string]string{"": "Invalid profile form"})
		return
	}
	if errs := s.validate(form); len(errs) > 0 {
		s.renderProfile(c, http.StatusBadRequest, form, models.FieldErrors(errs))
		return
	}

	user := *guardedState(c).User
	form.Apply(&user)
	user.UpdateDate = time.Now().UTC().Format(time.RFC3339)

	if err := h.API.UpdateUser(c.Request.Context(), user); err != nil {
		s.requestLogger(c).Error().Err(err).Msg("Failed to update profile")
		s.renderProfile(c, http.StatusBadGateway, form, map[string]string{"": "There was a problem saving your profile."})
		return
	}

	s.refetch(c, h)
	s.redirectWithFlash(c, "/profile", "Profile updated.")
}

// ownAppointment loads appointment id if it belongs to the current user
func (s *Server) ownAppointment(c *gin.Context) (models.Appointment, bool) {
	h := mustHandle(c)
	user := guardedState(c).User

	id, ok := paramID(c)
	if !ok {
		s.renderError(c, http.StatusNotFound, "Appointment not found.")
		return models.Appointment{}, false
	}

	mine, err := s.myAppointments(c.Request.Context(), h.API, user.ID)
	if err != nil {
		s.requestLogger(c).Error().Err(err).Msg("Failed to load appointments")
		s.redirectWithFlash(c, "/profile", "There was a problem loading your appointments.")
		return models.Appointment{}, false
	}

	appt, found := dashboard.FindAppointment(mine, id)
	if !found {
		s.renderError(c, http.StatusNotFound, "Appointment not found.")
		return models.Appointment{}, false
	}
	return appt, true
}

// updateAppointment reschedules one of the user's appointments, keeping its
// type and status
func (s *Server) updateAppointment(c *gin.Context) {
	h := mustHandle(c)

	appt, ok := s.ownAppointment(c)
	if !ok {
		return
	}

	var form models.AppointmentForm
	if err := c.ShouldBind(&form); err != nil || len(s.validate(form)) > 0 {
		s.redirectWithFlash(c, "/profile", "Please choose a hospital and date.")
		return
	}
	date, err := normalizeDate(form.Date)
	if err != nil {
		s.redirectWithFlash(c, "/profile", "Date is invalid.")
		return
	}

	update := models.AppointmentForm{
		UserID:          appt.UserID,
		HospitalID:      form.HospitalID,
		AppointmentType: appt.AppointmentType,
		Status:          appt.Status,
		Date:            date,
		Info:            form.Info,
	}
	if err := h.API.UpdateAppointment(c.Request.Context(), appt.ID, update); err != nil {
		s.requestLogger(c).Error().Err(err).Int64("appointment_id", appt.ID).Msg("Failed to update appointment")
		s.redirectWithFlash(c, "/profile", "There was a problem saving your appointment.")
		return
	}

	s.redirectWithFlash(c, "/profile", "Appointment updated.")
}

func (s *Server) deleteAppointment(c *gin.Context) {
	h := mustHandle(c)

	appt, ok := s.ownAppointment(c)
	if !ok {
		return
	}

	if err := h.API.DeleteAppointment(c.Request.Context(), appt.ID); err != nil {
		s.requestLogger(c).Error().Err(err).Int64("appointment_id", appt.ID).Msg("Failed to delete appointment")
		s.redirectWithFlash(c, "/profile", "There was a problem cancelling your appointment.")
		return
	}

	s.redirectWithFlash(c, "/profile", "Appointment cancelled.")
}
