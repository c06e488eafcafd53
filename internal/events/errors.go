package events

import "errors"

var (
	ErrInvalidModel      = errors.New("events: invalid model")
	ErrInvalidChangeType = errors.New("events: invalid change type")
)
