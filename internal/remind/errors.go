package remind

import "errors"

// Parse failures are recoverable user conditions: the caller translates
// them into corrective prompts, nothing here ever panics.
var (
	ErrNoTimestamp         = errors.New("no recognizable date/time in text")
	ErrInvalidCalendarDate = errors.New("invalid calendar date")
	ErrPastTime            = errors.New("resolved time is not in the future")
	ErrInvalidLead         = errors.New("lead minutes must not be negative")
)
