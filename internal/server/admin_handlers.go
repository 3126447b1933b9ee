package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/dashboard"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

const adminPath = "/admin"

// adminDashboard shows inventory grouped by blood type alongside users,
// appointments and hospitals. Lists that fail to load render empty.
func (s *Server) adminDashboard(c *gin.Context) {
	h := mustHandle(c)
	ctx := c.Request.Context()
	log := s.requestLogger(c)

	inventory, err := h.API.ListInventory(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load inventory")
		inventory = []models.InventoryRow{}
	}
	users, err := h.API.ListUsers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load users")
		users = []models.User{}
	}
	appointments, err := h.API.ListAppointments(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load appointments")
		appointments = []models.Appointment{}
	}
	bloodTypes, err := h.API.ListBloodTypes(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load blood types")
		bloodTypes = []models.BloodType{}
	}
	hospitals := s.loadHospitals(c, h.API)

	data := gin.H{
		"Title":        "Admin dashboard",
		"Counts":       dashboard.Count(inventory, users, appointments, hospitals),
		"Groups":       dashboard.GroupByBloodType(inventory, bloodTypes),
		"Users":        users,
		"Appointments": appointments,
		"Hospitals":    hospitals,
		"BloodTypes":   bloodTypes,
	}

	// ?manage=<bloodTypeId> opens the per-hospital rows of one blood type
	if manage, err := strconv.ParseInt(c.Query("manage"), 10, 64); err == nil {
		rows := dashboard.RowsForBloodType(inventory, manage)
		manageRows := make([]gin.H, 0, len(rows))
		for _, row := range rows {
			manageRows = append(manageRows, gin.H{
				"Row":      row,
				"Hospital": dashboard.HospitalLabel(row, hospitals),
			})
		}
		data["Manage"] = gin.H{
			"BloodTypeID": manage,
			"Label":       dashboard.BloodTypeLabel(manage, bloodTypes, inventory),
			"Rows":        manageRows,
		}
	}

	s.render(c, http.StatusOK, "admin.html", data)
}

// back returns to the dashboard, keeping the open blood type panel
func (s *Server) back(c *gin.Context, message string) {
	location := adminPath
	if manage := c.PostForm("manage"); manage != "" {
		if _, err := strconv.ParseInt(manage, 10, 64); err == nil {
			location += "?manage=" + manage
		}
	}
	s.redirectWithFlash(c, location, message)
}

func (s *Server) adminUpdateInventory(c *gin.Context) {
	h := mustHandle(c)
	id, ok := paramID(c)
	if !ok {
		s.renderError(c, http.StatusNotFound, "Inventory row not found.")
		return
	}

	var form models.InventoryUpdate
	if err := c.ShouldBind(&form); err != nil || len(s.validate(form)) > 0 {
		s.back(c, "Choose a hospital and a blood type.")
		return
	}

	if err := h.API.UpdateInventory(c.Request.Context(), id, form); err != nil {
		s.requestLogger(c).Error().Err(err).Int64("inventory_id", id).Msg("Failed to update inventory")
		s.back(c, "There was a problem updating the inventory.")
		return
	}
	s.back(c, "Inventory updated.")
}

func (s *Server) adminChangeUnits(c *gin.Context, add bool) {
	h := mustHandle(c)
	id, ok := paramID(c)
	if !ok {
		s.renderError(c, http.StatusNotFound, "Inventory row not found.")
		return
	}

	var form models.UnitsChange
	if err := c.ShouldBind(&form); err != nil || len(s.validate(form)) > 0 {
		s.back(c, "Units must be greater than 0.")
		return
	}

	change := h.API.RemoveUnits
	if add {
		change = h.API.AddUnits
	}
	if err := change(c.Request.Context(), id, form.Units); err != nil {
		s.requestLogger(c).Error().Err(err).Int64("inventory_id", id).Bool("add", add).Msg("Failed to change units")
		s.back(c, "There was a problem changing the units.")
		return
	}
	s.back(c, "Units updated.")
}

func (s *Server) adminAddUnits(c *gin.Context) {
	s.adminChangeUnits(c, true)
}

func (s *Server) adminRemoveUnits(c *gin.Context) {
	s.adminChangeUnits(c, false)
}

func (s *Server) adminDeleteInventory(c *gin.Context) {
	h := mustHandle(c)
	id, ok := paramID(c)
	if !ok {
		s.renderError(c, http.StatusNotFound, "Inventory row not found.")
		return
	}

	if err := h.API.DeleteInventory(c.Request.Context(), id); err != nil {
		s.requestLogger(c).Error().Err(err).Int64("inventory_id", id).Msg("Failed to delete inventory")
		s.back(c, "There was a problem deleting the inventory row.")
		return
	}
	s.back(c, "Inventory row deleted.")
}

// setAppointmentStatus resends the whole appointment with a new status
func (s *Server) setAppointmentStatus(c *gin.Context, status string) {
	h := mustHandle(c)
	ctx := c.Request.Context()

	id, ok := paramID(c)
	if !ok {
		s.renderError(c, http.StatusNotFound, "Appointment not found.")
		return
	}

	appointments, err := h.API.ListAppointments(ctx)
	if err != nil {
		s.requestLogger(c).Error().Err(err).Msg("Failed to load appointments")
		s.back(c, "There was a problem loading appointments.")
		return
	}
	appt, found := dashboard.FindAppointment(appointments, id)
	if !found {
		s.renderError(c, http.StatusNotFound, "Appointment not found.")
		return
	}

	update := models.AppointmentForm{
		UserID:          appt.UserID,
		HospitalID:      appt.HospitalID,
		AppointmentType: appt.AppointmentType,
		Status:          status,
		Date:            appt.Date,
		Info:            appt.Info,
	}
	if err := h.API.UpdateAppointment(ctx, id, update); err != nil {
		s.requestLogger(c).Error().Err(err).Int64("appointment_id", id).Str("status", status).Msg("Failed to update appointment status")
		s.back(c, "There was a problem updating the appointment.")
		return
	}

	s.requestLogger(c).Info().Int64("appointment_id", id).Str("status", status).Msg("Appointment status changed")
	s.back(c, "Appointment "+status+".")
}

func (s *Server) adminApproveAppointment(c *gin.Context) {
	s.setAppointmentStatus(c, models.AppointmentApproved)
}

func (s *Server) adminCancelAppointment(c *gin.Context) {
	s.setAppointmentStatus(c, models.AppointmentCancelled)
}

func (s *Server) adminUpdateUser(c *gin.Context) {
	h := mustHandle(c)
	ctx := c.Request.Context()

	id, ok := paramID(c)
	if !ok {
		s.renderError(c, http.StatusNotFound, "User not found.")
		return
	}

	var form models.ProfileUpdate
	if err := c.ShouldBind(&form); err != nil {
		s.back(c, "Invalid user form.")
		return
	}
	if errs := s.validate(form); len(errs) > 0 {
		s.back(c, errs[0].Message)
		return
	}

	users, err := h.API.ListUsers(ctx)
	if err != nil {
		s.requestLogger(c).Error().Err(err).Msg("Failed to load users")
		s.back(c, "There was a problem loading users.")
		return
	}

	var target *models.User
	for i := range users {
		if users[i].ID == id {
			target = &users[i]
			break
		}
	}
	if target == nil {
		s.renderError(c, http.StatusNotFound, "User not found.")
		return
	}

	form.Apply(target)
	if err := h.API.UpdateUser(ctx, *target); err != nil {
		s.requestLogger(c).Error().Err(err).Int64("user_id", id).Msg("Failed to update user")
		s.back(c, "There was a problem updating the user.")
		return
	}

	// Editing yourself changes the session identity
	if me := guardedState(c).User; me != nil && me.ID == id {
		s.refetch(c, h)
	}
	s.back(c, "User updated.")
}

func (s *Server) adminDeleteUser(c *gin.Context) {
	h := mustHandle(c)

	id, ok := paramID(c)
	if !ok {
		s.renderError(c, http.StatusNotFound, "User not found.")
		return
	}
	if me := guardedState(c).User; me != nil && me.ID == id {
		s.back(c, "You cannot delete your own account here.")
		return
	}

	if err := h.API.DeleteUser(c.Request.Context(), id); err != nil {
		s.requestLogger(c).Error().Err(err).Int64("user_id", id).Msg("Failed to delete user")
		s.back(c, "There was a problem deleting the user.")
		return
	}
	s.back(c, "User deleted.")
}
