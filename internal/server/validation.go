package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

// fieldLabels are the human names used in validation messages
var fieldLabels = map[string]string{
	"userName":     "Username",
	"password":     "Password",
	"firstName":    "First name",
	"lastName":     "Last name",
	"email":        "Email",
	"phoneNumber":  "Phone number",
	"dateOfBirth":  "Date of birth",
	"gender":       "Gender",
	"userType":     "Account type",
	"bloodType":    "Blood type",
	"hospitalId":   "Hospital",
	"bloodTypeId":  "Blood type",
	"date":         "Date",
	"units":        "Units",
	"requestName":  "Name",
	"hospitalName": "Hospital",
}

func newValidator() *validator.Validate {
	validate := validator.New()

	// Report fields by their JSON names so messages line up with backend errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	validate.RegisterValidation("bloodtype", func(fl validator.FieldLevel) bool {
		return models.IsBloodGroup(fl.Field().String())
	})

	return validate
}

// validate checks v and converts failures into the backend's error shape
func (s *Server) validate(v any) []models.APIError {
	err := s.validator.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.APIError{{Message: err.Error()}}
	}

	out := make([]models.APIError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.APIError{Property: fe.Field(), Message: validationMessage(fe)})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required", "notblank":
		return label + " must not be empty"
	case "email":
		return label + " must be a valid email address"
	case "bloodtype":
		return label + " must be one of " + strings.Join(models.BloodGroups, ", ")
	case "oneof":
		return label + " must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	default:
		return label + " is invalid"
	}
}
