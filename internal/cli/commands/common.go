package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/backend"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/cli/userconfig"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/logger"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

// The CLI keeps a single session slot in the local session file
const cliSessionID = "cli"

// cliSession is the local counterpart of a browser session
type cliSession struct {
	store    session.Store
	api      *backend.Client
	provider *session.Provider
}

func addAPIFlag(cmd *cobra.Command, apiURL *string) {
	cmd.Flags().StringVar(apiURL, "api", "", "BloodBridge API address (or set BLOODBRIDGE_API_URL)")
}

// resolveAPIBaseURL picks the API address from the flag, the environment
// or the user config, in that order
func resolveAPIBaseURL(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return strings.TrimRight(v, "/"), nil
	}
	if v := strings.TrimSpace(os.Getenv("BLOODBRIDGE_API_URL")); v != "" {
		return strings.TrimRight(v, "/"), nil
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return "", err
	}
	if cfg.APIBaseURL != "" {
		return cfg.APIBaseURL, nil
	}

	return "", fmt.Errorf("API address is not set (use --api, BLOODBRIDGE_API_URL or 'bloodbridge use-api <url>')")
}

// openSession restores the saved backend cookies and binds a provider to them
func openSession(ctx context.Context, apiURL string) (*cliSession, error) {
	baseURL, err := resolveAPIBaseURL(apiURL)
	if err != nil {
		return nil, err
	}

	path, err := session.DefaultFilePath()
	if err != nil {
		return nil, err
	}
	store := session.NewFileStore(path)

	cookies, err := session.LoadCookies(ctx, store, cliSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved session: %w", err)
	}

	api, err := backend.New(backend.Options{
		BaseURL:            baseURL,
		Cookies:            cookies,
		InsecureSkipVerify: os.Getenv("BLOODBRIDGE_INSECURE_SKIP_VERIFY") == "true",
	})
	if err != nil {
		return nil, err
	}

	return &cliSession{
		store:    store,
		api:      api,
		provider: session.NewProvider(cliSessionID, api, store, logger.GetLogger()),
	}, nil
}

func (s *cliSession) saveCookies(ctx context.Context) error {
	if err := session.SaveCookies(ctx, s.store, cliSessionID, s.api.Cookies()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func describeUser(u *models.User) string {
	role := u.Role.String()
	if role == "" {
		role = "no role"
	}
	return fmt.Sprintf("%s (%s, %s)", u.FullName(), u.UserName, role)
}

func joinErrors(errs []models.APIError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
