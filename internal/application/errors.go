package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidUsername     = errors.New("username must be 3-20 characters of letters, numbers, underscores or hyphens")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailNotVerified    = errors.New("please verify your email before logging in")
	ErrVerificationExpired = errors.New("verification token has expired")
	ErrVerificationInvalid = errors.New("invalid verification token")
	ErrAlreadyVerified     = errors.New("email is already verified")
	ErrUserNotFound        = errors.New("user not found")
	ErrNotificationFailure = errors.New("failed to send verification email, please try again")
	ErrUploadFailed        = errors.New("failed to upload profile picture")
	ErrInvalidUpload       = errors.New("profile picture must be an image no larger than the upload limit")
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
