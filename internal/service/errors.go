package service

import "errors"

// Validation errors returned to clients as 400s.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidSubscription = errors.New("push subscription needs an https endpoint and both keys")
	ErrRoomFull            = errors.New("room already has two members")
	ErrForbidden           = errors.New("not allowed")
)
