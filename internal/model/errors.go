package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already exists")

	// Token errors
	ErrTokenNotFound        = errors.New("token not found")
	ErrTokenAlreadyApproved = errors.New("token already approved")

	// Slot errors
	ErrSlotNotFound = errors.New("slot not found")

	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrResourceExists   = errors.New("resource already exists")
)
