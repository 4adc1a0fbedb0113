package service

import "errors"

var (
	ErrIDRequired      = errors.New("id is required")
	ErrNotFound        = errors.New("document not found")
	ErrFileNotFound    = errors.New("file not found")
	ErrForbidden       = errors.New("access denied")
	ErrFileRequired    = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file too large")
	ErrVersionConflict = errors.New("document was modified concurrently")
	ErrValidation      = errors.New("validation failed")
	ErrStorage         = errors.New("storage failure")

	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)
