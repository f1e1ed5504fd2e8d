package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/abrezinsky/electora/internal/errors"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// envelope is the body of every API response
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrInternalServer is returned for any failure not classified by kind
var ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// Forbidden creates a 403 error with custom message
func Forbidden(message string) *APIError {
	return &APIError{Status: http.StatusForbidden, Code: ErrCodeForbidden, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK envelope carrying data
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// respondCreated writes a 201 Created envelope with a message and data
func respondCreated(w http.ResponseWriter, message string, data interface{}) {
	respondJSON(w, http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

// respondSuccess writes a 200 OK envelope with a message and optional data
func respondSuccess(w http.ResponseWriter, message string, data interface{}) {
	respondJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

// respondError writes an error envelope. Internal errors are logged and
// reported to the client without detail.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := err.(*APIError)
	if !ok {
		apiErr = ToAPIError(err)
	}
	if apiErr.Status >= http.StatusInternalServerError && h.Log != nil {
		h.Log.Error("Internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondJSON(w, apiErr.Status, envelope{Success: false, Message: apiErr.Message, Code: apiErr.Code})
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) {
		return ErrInternalServer
	}

	code := appErr.Code
	switch appErr.Kind {
	case errors.ErrNotFound:
		return withCode(NotFound(appErr.Message), code)
	case errors.ErrValidation:
		if code == "" {
			code = ErrCodeValidation
		}
		return &APIError{Status: http.StatusBadRequest, Code: code, Message: appErr.Message}
	case errors.ErrConflict:
		return withCode(Conflict(appErr.Message), code)
	case errors.ErrUnauthorized:
		return withCode(Unauthorized(appErr.Message), code)
	case errors.ErrForbidden:
		return withCode(Forbidden(appErr.Message), code)
	default:
		return ErrInternalServer
	}
}

func withCode(e *APIError, code string) *APIError {
	if code != "" {
		e.Code = code
	}
	return e
}
