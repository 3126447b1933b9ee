// Package guard decides whether a request may reach a protected page.
// Guards are pure functions of the session state and never fail: an
// unauthenticated or under-privileged request is redirected.
package guard

import "github.com/bloodbridge-dev/bloodbridge-web/internal/session"

const (
	LoginPath = "/login"
	RootPath  = "/"
)

// Kind is the outcome of a guard evaluation
type Kind int

const (
	// Pending means the session is still being revalidated; render nothing
	// and evaluate again on the next state change.
	Pending Kind = iota
	Redirect
	Allow
)

func (k Kind) String() string {
	switch k {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// Decision is a guard's verdict. Location is set for Redirect only.
type Decision struct {
	Kind     Kind
	Location string
}

// Func evaluates a guard against a session state
type Func func(session.State) Decision

// Authenticated lets any signed-in user through
func Authenticated(s session.State) Decision {
	switch {
	case s.Loading:
		return Decision{Kind: Pending}
	case s.User == nil:
		return Decision{Kind: Redirect, Location: LoginPath}
	default:
		return Decision{Kind: Allow}
	}
}

// Admin lets only administrators through. Signed-in users with any other
// role, including one the backend sent that is not recognized, go to the
// root page.
func Admin(s session.State) Decision {
	d := Authenticated(s)
	if d.Kind != Allow {
		return d
	}
	if !s.User.Role.IsAdmin() {
		return Decision{Kind: Redirect, Location: RootPath}
	}
	return d
}
