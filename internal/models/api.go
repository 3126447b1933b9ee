package models

// APIError is a field-level error reported by the backend. Property is
// empty for errors that do not belong to a single field.
type APIError struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

// APIResponse is the envelope every BloodBridge API endpoint returns
type APIResponse[T any] struct {
	Data      T          `json:"data"`
	Errors    []APIError `json:"errors"`
	HasErrors bool       `json:"hasErrors"`
}

// FieldErrors folds an error list into a property -> message map for form
// rendering. Later entries for the same property win.
func FieldErrors(errs []APIError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Property] = e.Message
	}
	return out
}
