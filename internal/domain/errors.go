package domain

import "errors"

// Sentinel errors shared by services and repositories. Controllers map them to HTTP status codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAlreadyRegistered   = errors.New("already registered")
	ErrVenueFull           = errors.New("event is full")
	ErrSlotConflict        = errors.New("another event taking place")
	ErrNotRegistered       = errors.New("user is not registered for the event")
	ErrEventNotConfirmed   = errors.New("event is not confirmed")
	ErrCapacityBelowRoster = errors.New("capacity below current participants")
	ErrInvalidStatus       = errors.New("invalid status")
)
