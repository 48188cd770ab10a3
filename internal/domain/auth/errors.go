package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrMissingIdentity       = errors.New("token does not carry an employee identity")
	ErrForbidden             = errors.New("you are not allowed to access this resource")
	ErrManagerAccessRequired = errors.New("manager access required")
	ErrAdminAccessRequired   = errors.New("admin access required")
)
