package models

import (
	"encoding/json"
	"fmt"
)

// Role is the authorization role the backend assigns to a user.
// The zero value is RoleUnknown, which carries no privileges.
type Role int

const (
	RoleUnknown Role = iota
	RoleDonor
	RoleRecipient
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleDonor:     "Donor",
	RoleRecipient: "Recipient",
	RoleAdmin:     "Admin",
}

// ParseRole maps the backend's role string onto Role. Matching is exact;
// anything else is RoleUnknown.
func ParseRole(s string) Role {
	for role, name := range roleNames {
		if name == s {
			return role
		}
	}
	return RoleUnknown
}

// String returns the canonical backend name, or "" for RoleUnknown
func (r Role) String() string {
	return roleNames[r]
}

// IsAdmin reports whether the role grants access to the admin dashboard
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// MarshalJSON encodes the role as its backend name
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a backend role string; unrecognized values and
// null decode to RoleUnknown
func (r *Role) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = RoleUnknown
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	*r = ParseRole(s)
	return nil
}

// User is the identity snapshot returned by the current-user endpoint.
// Only these fields are kept; decoding drops anything else the backend
// sends, so encoding a decoded User yields the cached snapshot.
type User struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	UserName         string `json:"userName"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phoneNumber"`
	Address          string `json:"address"`
	DateOfBirth      string `json:"dateOfBirth"`
	Gender           string `json:"gender"`
	UserType         string `json:"userType"`
	BloodType        string `json:"bloodType"`
	CreateDate       string `json:"createDate"`
	UpdateDate       string `json:"updateDate"`
	LastDonationDate string `json:"lastDonationDate"`
	Role             Role   `json:"role"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Initials returns the first letter of first and last name, for the nav bar
func (u *User) Initials() string {
	var out []rune
	for _, s := range []string{u.FirstName, u.LastName} {
		for _, r := range s {
			out = append(out, r)
			break
		}
	}
	return string(out)
}

// Clone returns a copy that shares no memory with u
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
