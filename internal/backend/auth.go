package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

const (
	currentUserPath  = "/api/get-current-user"
	logoutPath       = "/api/logout"
	authenticatePath = "/api/authenticate"
	usersPath        = "/api/users"
)

// CurrentUser asks the backend who owns this client's session. Field
// errors come back inside the envelope; only transport and server
// failures are returned as errors.
func (c *Client) CurrentUser(ctx context.Context) (*models.APIResponse[*models.User], error) {
	var resp models.APIResponse[*models.User]
	if err := c.doEnvelope(ctx, http.MethodGet, currentUserPath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout ends the backend session and returns the raw HTTP status.
// Interpreting the status is left to the caller.
func (c *Client) Logout(ctx context.Context) (int, error) {
	resp, err := c.send(ctx, http.MethodPost, logoutPath, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// Authenticate logs the session in. On success the backend sets its
// session cookie on this client's jar.
func (c *Client) Authenticate(ctx context.Context, creds models.Credentials) (*models.APIResponse[bool], error) {
	var resp models.APIResponse[bool]
	if err := c.doEnvelope(ctx, http.MethodPost, authenticatePath, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. The created record is not used by the
// front-end, so its data is left undecoded.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.APIResponse[json.RawMessage], error) {
	var resp models.APIResponse[json.RawMessage]
	if err := c.doEnvelope(ctx, http.MethodPost, usersPath, reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
