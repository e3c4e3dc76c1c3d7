// Package apierror defines the JSON error envelope the caja frontend consumes.
// Every 4xx/5xx body is one of these shapes; handlers never serialize raw
// gorm or driver errors to clients.
package apierror

// APIError carries a single human-readable message in Spanish.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError adds the per-field messages from validator/v10.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
