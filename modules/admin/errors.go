package admin

import "errors"

var (
	ErrInvalidToken       = errors.New("invalid admin token")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("admin user not found")
)
