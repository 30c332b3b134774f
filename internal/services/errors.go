package services

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrRaffleNotFound     = errors.New("raffle not found")
	ErrNumbersUnavailable = errors.New("numbers not available")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrStatusConflict     = errors.New("status changed concurrently")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
