package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

func userWithRole(r models.Role) *models.User {
	return &models.User{ID: 1, UserName: "ada", Role: r}
}

func TestAuthenticated(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		want  Decision
	}{
		{
			name:  "loading without user renders nothing",
			state: session.State{Loading: true},
			want:  Decision{Kind: Pending},
		},
		{
			name:  "loading with cached user renders nothing",
			state: session.State{Loading: true, User: userWithRole(models.RoleAdmin)},
			want:  Decision{Kind: Pending},
		},
		{
			name:  "no user redirects to login",
			state: session.State{},
			want:  Decision{Kind: Redirect, Location: "/login"},
		},
		{
			name: "field errors redirect to login",
			state: session.State{
				Errors: []models.APIError{{Property: "userName", Message: "not logged in"}},
			},
			want: Decision{Kind: Redirect, Location: "/login"},
		},
		{
			name:  "donor is allowed",
			state: session.State{User: userWithRole(models.RoleDonor)},
			want:  Decision{Kind: Allow},
		},
		{
			name:  "unknown role is still authenticated",
			state: session.State{User: userWithRole(models.RoleUnknown)},
			want:  Decision{Kind: Allow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authenticated(tt.state))
		})
	}
}

func TestAdmin(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		want  Decision
	}{
		{
			name:  "loading renders nothing",
			state: session.State{Loading: true, User: userWithRole(models.RoleDonor)},
			want:  Decision{Kind: Pending},
		},
		{
			name:  "no user redirects to login",
			state: session.State{},
			want:  Decision{Kind: Redirect, Location: "/login"},
		},
		{
			name:  "donor redirects to root",
			state: session.State{User: userWithRole(models.RoleDonor)},
			want:  Decision{Kind: Redirect, Location: "/"},
		},
		{
			name:  "recipient redirects to root",
			state: session.State{User: userWithRole(models.RoleRecipient)},
			want:  Decision{Kind: Redirect, Location: "/"},
		},
		{
			name:  "unrecognized role is least privilege",
			state: session.State{User: userWithRole(models.ParseRole("admin"))},
			want:  Decision{Kind: Redirect, Location: "/"},
		},
		{
			name:  "admin is allowed",
			state: session.State{User: userWithRole(models.RoleAdmin)},
			want:  Decision{Kind: Allow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Admin(tt.state))
		})
	}
}

func TestNonAdminPassesAuthenticatedButNotAdmin(t *testing.T) {
	state := session.State{User: userWithRole(models.RoleDonor), Errors: []models.APIError{}}

	assert.Equal(t, Allow, Authenticated(state).Kind)
	assert.Equal(t, Decision{Kind: Redirect, Location: "/"}, Admin(state))
}
