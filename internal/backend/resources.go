package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

const (
	hospitalsPath    = "/api/hospitals"
	bloodTypesPath   = "/api/bloodtypes"
	inventoryPath    = "/api/bloodinventorys"
	appointmentsPath = "/api/appointment"
	requestsPath     = "/api/requests"
)

// list fetches an enveloped slice. A nil data field yields an empty slice.
func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var resp models.APIResponse[[]T]
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return []T{}, nil
	}
	return resp.Data, nil
}

// ListHospitals returns all hospitals
func (c *Client) ListHospitals(ctx context.Context) ([]models.Hospital, error) {
	return list[models.Hospital](ctx, c, hospitalsPath)
}

// ListBloodTypes returns all blood types
func (c *Client) ListBloodTypes(ctx context.Context) ([]models.BloodType, error) {
	return list[models.BloodType](ctx, c, bloodTypesPath)
}

// ListInventory returns every inventory row across hospitals
func (c *Client) ListInventory(ctx context.Context) ([]models.InventoryRow, error) {
	return list[models.InventoryRow](ctx, c, inventoryPath)
}

// UpdateInventory reassigns an inventory row
func (c *Client) UpdateInventory(ctx context.Context, id int64, update models.InventoryUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", inventoryPath, id), update, nil)
}

// AddUnits increases the available units of an inventory row
func (c *Client) AddUnits(ctx context.Context, id int64, units int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("%s/%d/addunits", inventoryPath, id), models.UnitsChange{Units: units}, nil)
}

// RemoveUnits decreases the available units of an inventory row
func (c *Client) RemoveUnits(ctx context.Context, id int64, units int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("%s/%d/removeunits", inventoryPath, id), models.UnitsChange{Units: units}, nil)
}

// DeleteInventory removes an inventory row
func (c *Client) DeleteInventory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", inventoryPath, id), nil, nil)
}

// ListUsers returns all users (admin only on the backend)
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	return list[models.User](ctx, c, usersPath)
}

// UpdateUser replaces a user's profile
func (c *Client) UpdateUser(ctx context.Context, user models.User) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", usersPath, user.ID), user, nil)
}

// DeleteUser removes a user account
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", usersPath, id), nil, nil)
}

// ListAppointments returns the appointments visible to the session
func (c *Client) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	return list[models.Appointment](ctx, c, appointmentsPath)
}

// CreateAppointment schedules a new appointment
func (c *Client) CreateAppointment(ctx context.Context, form models.AppointmentForm) error {
	return c.do(ctx, http.MethodPost, appointmentsPath, form, nil)
}

// UpdateAppointment replaces an appointment
func (c *Client) UpdateAppointment(ctx context.Context, id int64, form models.AppointmentForm) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", appointmentsPath, id), form, nil)
}

// DeleteAppointment removes an appointment
func (c *Client) DeleteAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", appointmentsPath, id), nil, nil)
}

// CreateBloodRequest submits an emergency blood request
func (c *Client) CreateBloodRequest(ctx context.Context, req models.BloodRequest) error {
	return c.do(ctx, http.MethodPost, requestsPath, req, nil)
}
