package summitlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Error codes returned in API error envelopes.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeRateLimit  = "RATE_LIMIT"
	CodeSecurity   = "SECURITY_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
)

// APIError is an error with an HTTP status and a stable machine-readable
// code. Handlers return it for anything the client can act on.
type APIError struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// ValidationError is a 400 with code VALIDATION_ERROR.
func ValidationError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeValidation, Message: message}
}

// ConflictError is a 409 with code VALIDATION_ERROR, used for slug
// collisions on create.
func ConflictError(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: CodeValidation, Message: message}
}

// SecurityError is a 400 with code SECURITY_ERROR, used when input is
// rejected for safety rather than shape.
func SecurityError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeSecurity, Message: message}
}

// NotFoundError is a 404 with code NOT_FOUND.
func NotFoundError(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

// InternalError is a 500 with code INTERNAL_ERROR. The cause is logged but
// never sent to the client outside development.
func InternalError(message string, cause error) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message, cause: cause}
}

// errorEnvelope is the single JSON error shape for all API routes.
type errorEnvelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// httpErrorHandler funnels every error through one place. API routes get
// the JSON envelope; page routes get the caller's error views when set,
// otherwise Echo's default.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	code := CodeInternal
	message := "Internal server error"
	var cause error

	switch e := err.(type) {
	case *APIError:
		status = e.Status
		code = e.Code
		message = e.Message
		cause = e.cause
	case *echo.HTTPError:
		status = e.Code
		message = http.StatusText(status)
		if s, ok := e.Message.(string); ok {
			message = s
		}
		switch status {
		case http.StatusNotFound:
			code = CodeNotFound
		case http.StatusTooManyRequests:
			code = CodeRateLimit
		case http.StatusMethodNotAllowed, http.StatusBadRequest:
			code = CodeValidation
		}
	default:
		cause = err
	}

	if status >= 500 {
		c.Logger().Errorf("%s %s -> %d: %v", c.Request().Method, c.Request().URL.Path, status, err)
	}

	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		env := errorEnvelope{
			Message:   message,
			Code:      code,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if cause != nil && a.Config.IsDevelopment() {
			env.Detail = cause.Error()
		}
		_ = c.JSON(status, env)
		return
	}

	if status == http.StatusNotFound && a.Views.NotFound != nil {
		_ = RenderStatus(c, status, a.Views.NotFound())
		return
	}
	if status >= 500 && a.Views.ServerError != nil {
		_ = RenderStatus(c, status, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
