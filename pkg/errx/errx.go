package errx

import (
	"fmt"
	"net/http"
)

// ============================================================================
// Error Types
// ============================================================================

// Type classifies an error for transport mapping and logging
type Type string

const (
	TypeValidation     Type = "VALIDATION"
	TypeNotFound       Type = "NOT_FOUND"
	TypeConflict       Type = "CONFLICT"
	TypeAuthentication Type = "AUTHENTICATION"
	TypeAuthorization  Type = "AUTHORIZATION"
	TypeBusiness       Type = "BUSINESS"
	TypeExternal       Type = "EXTERNAL"
	TypeInternal       Type = "INTERNAL"
)

// defaultStatus maps a type to an HTTP status when no explicit one is given
func defaultStatus(t Type) int {
	switch t {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeAuthentication:
		return http.StatusUnauthorized
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeBusiness:
		return http.StatusUnprocessableEntity
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ============================================================================
// Error
// ============================================================================

// Error is the rich error carried across service boundaries
type Error struct {
	Code       string         `json:"code"`
	Type       Type           `json:"type"`
	HTTPStatus int            `json:"status"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key/value pair for the API response and logs
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithError attaches an underlying cause
func (e *Error) WithError(err error) *Error {
	e.Err = err
	return e
}

// New creates an untyped (registry-less) error
func New(message string, t Type) *Error {
	return &Error{
		Code:       string(t),
		Type:       t,
		HTTPStatus: defaultStatus(t),
		Message:    message,
	}
}

// Wrap wraps an underlying error with a message and type
func Wrap(err error, message string, t Type) *Error {
	return &Error{
		Code:       string(t),
		Type:       t,
		HTTPStatus: defaultStatus(t),
		Message:    message,
		Err:        err,
	}
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, t Type) bool {
	e, ok := err.(*Error)
	return ok && e.Type == t
}

// ============================================================================
// Registry
// ============================================================================

// Code identifies a registered error definition
type Code string

type definition struct {
	code       Code
	errType    Type
	httpStatus int
	message    string
}

// Registry holds the error definitions of one domain, namespaced by prefix
type Registry struct {
	prefix      string
	definitions map[Code]definition
}

// NewRegistry creates a registry for a domain (e.g. "PIPELINE", "USER")
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:      prefix,
		definitions: make(map[Code]definition),
	}
}

// Register records an error definition and returns its code.
// Call at package init time; duplicate codes panic.
func (r *Registry) Register(code string, t Type, httpStatus int, message string) Code {
	full := Code(r.prefix + "_" + code)
	if _, exists := r.definitions[full]; exists {
		panic(fmt.Sprintf("errx: duplicate error code %q", full))
	}
	r.definitions[full] = definition{
		code:       full,
		errType:    t,
		httpStatus: httpStatus,
		message:    message,
	}
	return full
}

// New instantiates a registered error
func (r *Registry) New(code Code) *Error {
	def, ok := r.definitions[code]
	if !ok {
		return &Error{
			Code:       string(code),
			Type:       TypeInternal,
			HTTPStatus: http.StatusInternalServerError,
			Message:    "unregistered error code",
		}
	}
	return &Error{
		Code:       string(def.code),
		Type:       def.errType,
		HTTPStatus: def.httpStatus,
		Message:    def.message,
	}
}

// NewWithError instantiates a registered error with an underlying cause
func (r *Registry) NewWithError(code Code, err error) *Error {
	e := r.New(code)
	e.Err = err
	return e
}
