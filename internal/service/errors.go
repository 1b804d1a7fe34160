package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid name or password")
	// ErrAccountDisabled is returned when an inactive user tries to authenticate.
	ErrAccountDisabled = errors.New("user account is disabled")
	// ErrInvalidToken indicates a missing, malformed, expired, or orphaned token.
	ErrInvalidToken = errors.New("token is invalid or expired")
	// ErrWrongCurrentPassword is returned by ChangePassword when verification fails.
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	// ErrDuplicateEmail is returned when registering with an email already in use.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords don't match")
	// ErrPasswordTooShort is returned for passwords under MinPasswordLength.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrPasswordTooLong is returned for passwords over MaxPasswordLength bytes.
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
	// ErrRequired marks a missing or blank field.
	ErrRequired = errors.New("this field is required")
	// ErrInvalidEmail marks an email that does not parse.
	ErrInvalidEmail = errors.New("enter a valid email address")
	// ErrInvalidImage marks a profile picture upload that is not an image.
	ErrInvalidImage = errors.New("upload a valid image")
	// ErrImageTooLarge marks a profile picture over MaxProfilePicSize.
	ErrImageTooLarge = errors.New("image file is too large")
	// ErrUploadsDisabled is returned when no object storage is configured.
	ErrUploadsDisabled = errors.New("profile picture uploads are not configured")
	// ErrCourseNotFound is returned when enrolling in an unknown course.
	ErrCourseNotFound = errors.New("course not found")
	// ErrAlreadyEnrolled is returned when the user already holds an enrollment for the course.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrEnrollmentNotFound covers unknown ids and ids owned by someone else.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	// ErrUserNotFound is returned when the requesting user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// NonFieldErrors is the details key for failures that span several fields.
const NonFieldErrors = "non_field_errors"

// ValidationError collects field level input failures. errors.Is matches any
// of the collected sentinels.
type ValidationError struct {
	Fields map[string][]string
	errs   []error
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func invalid(field string, err error) *ValidationError {
	v := newValidationError()
	v.Add(field, err)
	return v
}

// Add records err against field.
func (e *ValidationError) Add(field string, err error) {
	e.Fields[field] = append(e.Fields[field], err.Error())
	e.errs = append(e.errs, err)
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e.Fields[field], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return e.errs
}

// orNil returns nil when nothing was recorded.
func (e *ValidationError) orNil() error {
	if len(e.errs) == 0 {
		return nil
	}
	return e
}

// Message returns the first recorded failure.
func (e *ValidationError) Message() string {
	if len(e.errs) == 0 {
		return "validation failed"
	}
	return e.errs[0].Error()
}
