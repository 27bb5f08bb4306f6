package cognito

import (
	"errors"
	"net/http"
)

var (
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrInvalidCode           = errors.New("invalid code")
	ErrCodeExpired           = errors.New("code expired")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrLimitExceeded         = errors.New("limit exceeded")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrChallengeRequired     = errors.New("additional challenge required")
)

// ErrorInfo is what the HTTP layer reports for a sentinel: status, machine code
// and a message that is safe to show to the person filling in the form.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

var errorTable = []struct {
	err  error
	info ErrorInfo
}{
	{ErrUserAlreadyExists, ErrorInfo{http.StatusConflict, "USER_ALREADY_EXISTS", "a user with this email already exists"}},
	{ErrUserNotFound, ErrorInfo{http.StatusNotFound, "USER_NOT_FOUND", "user not found"}},
	{ErrUserNotConfirmed, ErrorInfo{http.StatusForbidden, "USER_NOT_CONFIRMED", "email address not confirmed"}},
	{ErrInvalidPassword, ErrorInfo{http.StatusBadRequest, "INVALID_PASSWORD", "password does not meet requirements"}},
	{ErrInvalidCode, ErrorInfo{http.StatusBadRequest, "INVALID_CODE", "invalid verification code"}},
	{ErrCodeExpired, ErrorInfo{http.StatusBadRequest, "CODE_EXPIRED", "verification code has expired"}},
	{ErrTooManyRequests, ErrorInfo{http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many requests, please try again later"}},
	{ErrNotAuthorized, ErrorInfo{http.StatusUnauthorized, "NOT_AUTHORIZED", "incorrect email or password"}},
	{ErrLimitExceeded, ErrorInfo{http.StatusTooManyRequests, "LIMIT_EXCEEDED", "attempt limit exceeded, please try again later"}},
	{ErrPasswordResetRequired, ErrorInfo{http.StatusForbidden, "PASSWORD_RESET_REQUIRED", "password reset is required"}},
	{ErrInvalidParameter, ErrorInfo{http.StatusBadRequest, "INVALID_PARAMETER", "invalid request parameter"}},
	{ErrChallengeRequired, ErrorInfo{http.StatusForbidden, "CHALLENGE_REQUIRED", "this account needs an additional sign-in step"}},
}

// LookupError reports the ErrorInfo of the first sentinel err wraps.
func LookupError(err error) (ErrorInfo, bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.info, true
		}
	}
	return ErrorInfo{}, false
}
