package service

import "errors"

// Client-input failures surfaced to the boundary layer. Storage failures
// pass through wrapped and map to a generic unavailable response.
var (
	ErrInvalidPayload    = errors.New("no party information in webhook payload")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrAlreadyLocked     = errors.New("technician is already locked")
	ErrNotLocked         = errors.New("technician is not locked")
	ErrScheduleExists    = errors.New("schedule already exists for this day")
	ErrInvalidTimeFormat = errors.New("invalid time format, expected HH:mm")
	ErrInvalidTimeRange  = errors.New("start time must be before end time")
)
