package todoerror

import "net/http"

// StatusExpiredAccessToken is an HTTP status code used when an access token is expired.
const StatusExpiredAccessToken = 498

// Tags rendered with errors so clients can react without parsing messages.
const (
	TagInvalidAuth         = "invalid-auth"
	TagExpiredAccessToken  = "expired-access-token"
	TagExpiredRefreshToken = "expired-refresh-token"
	TagInvalidParameters   = "invalid-parameters"
)

type (
	// An APIError represents the error format that can be rendered by the todo server.
	APIError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if apierr, ok := err.(*APIError); ok && apierr.HTTPCode != 0 {
		return apierr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new APIError with the given message.
func New(message string) *APIError {
	return &APIError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new APIError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *APIError {
	return &APIError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// InvalidAuth returns the error rendered for any authentication failure.
func InvalidAuth() *APIError {
	return NewWithTagCode(http.StatusUnauthorized, TagInvalidAuth, "Invalid login credentials.")
}

// Tag returns the error's tag.
func (e *APIError) Tag() string {
	return e.FieldError.Tag
}

// Error implements error interface.
func (e *APIError) Error() string {
	return e.FieldError.Message
}
