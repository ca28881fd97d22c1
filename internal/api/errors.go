package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rosterhq/roster-api/internal/api/shared"
	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/service"
	"github.com/rosterhq/roster-api/internal/service/auth"
	"github.com/rosterhq/roster-api/internal/store"
)

// Machine-readable error codes carried in error responses. Clients
// branch on these, not on messages.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeInternal         = "INTERNAL"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so
// that internal error types never leak to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	default:
		if isDomainValidationError(err) {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	}
}

// MapErrorToCode returns the machine-readable code for an error.
func MapErrorToCode(err error) string {
	switch MapErrorToStatusCode(err) {
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusBadRequest:
		return CodeBadRequest
	default:
		return CodeInternal
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for
// the error, hiding internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid username or password"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, domain.ErrForbidden):
		return "You are not allowed to perform this action"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists), errors.Is(err, service.ErrEmailTaken):
		return "Email already exists"

	case errors.Is(err, store.ErrUsernameExists), errors.Is(err, service.ErrUsernameTaken):
		return "Username already exists"

	case errors.Is(err, service.ErrWrongPassword):
		return "Current password is incorrect"

	case errors.Is(err, domain.ErrInvalidRole):
		return "Invalid role"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		if isDomainValidationError(err) {
			return err.Error()
		}
		return "An unexpected error occurred"
	}
}

// isDomainValidationError reports whether the error is one of the
// domain's field-validation sentinels, which are safe to echo back.
func isDomainValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrEmptyFullName,
		domain.ErrEmptyEmail,
		domain.ErrInvalidEmail,
		domain.ErrInvalidPhoneNumber,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
		domain.ErrEmptyPassword,
		domain.ErrDateOfBirthInFuture,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	var vErr *domain.ValidationError
	return errors.As(err, &vErr)
}

// ValidationDetails extracts one human-readable detail string per
// failed field from a validator error. Non-validator errors produce
// no details.
func ValidationDetails(err error) []string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return nil
	}
	details := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		details = append(details,
			fmt.Sprintf("%s: %s", fe.Field(), validationTagMessage(fe.Tag())))
	}
	return details
}

// validationTagMessage maps validation tags to user-friendly messages.
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// RespondWithMappedError is the common exit path for handler errors:
// it derives the status, code and safe message from the error itself.
func RespondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(
		w, r,
		MapErrorToStatusCode(err),
		MapErrorToCode(err),
		GetSafeErrorMessage(err),
		err,
	)
}
