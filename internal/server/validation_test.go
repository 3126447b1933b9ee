package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

func TestValidate_Credentials(t *testing.T) {
	s := &Server{validator: newValidator()}

	errs := s.validate(models.Credentials{UserName: " ", Password: ""})
	assert.Equal(t, map[string]string{
		"userName": "Username must not be empty",
		"password": "Password must not be empty",
	}, models.FieldErrors(errs))

	assert.Empty(t, s.validate(models.Credentials{UserName: "ada", Password: "pw"}))
}

func TestValidate_Registration(t *testing.T) {
	s := &Server{validator: newValidator()}

	reg := models.Registration{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Email:       "not-an-email",
		PhoneNumber: "555",
		DateOfBirth: "1990-01-01",
		Gender:      "Female",
		UserType:    "Admin",
		BloodType:   "C+",
		UserName:    "ada",
		Password:    "pw",
	}

	errs := models.FieldErrors(s.validate(reg))
	assert.Equal(t, "Email must be a valid email address", errs["email"])
	assert.Equal(t, "Account type must be one of Donor, Recipient", errs["userType"])
	assert.Contains(t, errs["bloodType"], "must be one of A+")
	assert.Len(t, errs, 3)
}

func TestValidate_UnitsChange(t *testing.T) {
	s := &Server{validator: newValidator()}

	errs := s.validate(models.UnitsChange{Units: 0})
	assert.Equal(t, []models.APIError{{Property: "units", Message: "Units must not be empty"}}, errs)

	errs = s.validate(models.UnitsChange{Units: -1})
	assert.Equal(t, "Units must be greater than 0", errs[0].Message)
}

func TestNormalizeDate(t *testing.T) {
	got, err := normalizeDate("2026-12-01T10:30")
	assert.NoError(t, err)
	assert.Equal(t, "2026-12-01T10:30:00Z", got)

	got, err = normalizeDate("2026-12-01T10:30:00+02:00")
	assert.NoError(t, err)
	assert.Equal(t, "2026-12-01T08:30:00Z", got)

	_, err = normalizeDate("tomorrow")
	assert.Error(t, err)
}

func TestIPLimiter(t *testing.T) {
	now := time.Now()
	l := newIPLimiter(2)

	assert.True(t, l.Allow("10.0.0.1", now))
	assert.True(t, l.Allow("10.0.0.1", now))
	assert.False(t, l.Allow("10.0.0.1", now))
	assert.True(t, l.Allow("10.0.0.2", now))

	// One token refills every 30 seconds
	assert.True(t, l.Allow("10.0.0.1", now.Add(31*time.Second)))

	assert.Equal(t, 0, l.Prune(now.Add(-time.Minute)))
	assert.Equal(t, 2, l.Prune(now.Add(time.Hour)))

	unlimited := newIPLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.Allow("10.0.0.1", now))
	}
}
