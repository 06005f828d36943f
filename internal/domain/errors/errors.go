package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOrderNumber = errors.New("invalid order number")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrOrderNotPayable    = errors.New("order is not payable")
)
