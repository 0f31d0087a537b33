package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailRequired is returned when a user is created without an email.
	ErrEmailRequired = errors.New("email address is required")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email address already in use")
	// ErrInvalidCredentials is returned when token issuance fails.
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or revoked.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrRecipeNotFound is returned when a recipe is absent or owned by another user.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrTagNotFound is returned when a tag is absent or owned by another user.
	ErrTagNotFound = errors.New("tag not found")
	// ErrTagNameTaken is returned when a rename collides with another of the
	// owner's tags.
	ErrTagNameTaken = errors.New("a tag with this name already exists")
	// ErrInvalidPrice is returned when a price has too many digits.
	ErrInvalidPrice = errors.New("price must have at most 3 integer and 2 fraction digits")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Not-owned records map
// to 404 exactly like absent ones so existence never leaks across owners.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrEmailRequired:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_REQUIRED")
	case ErrEmailTaken:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_TAKEN")
	case ErrInvalidCredentials:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_CREDENTIALS")
	case ErrInvalidRefreshToken:
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case ErrRecipeNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "RECIPE_NOT_FOUND")
	case ErrTagNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "TAG_NOT_FOUND")
	case ErrTagNameTaken:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "TAG_NAME_TAKEN")
	case ErrInvalidPrice:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_PRICE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
