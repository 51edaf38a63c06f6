package models

import (
	"errors"
	"fmt"
)

// ErrInvalidState is matched by every rejected state transition
var ErrInvalidState = errors.New("invalid state transition")

// InvalidStateError describes a rejected state transition
type InvalidStateError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *InvalidStateError) Error() string {
	from := e.From
	if from == "" {
		from = "absent"
	}
	msg := fmt.Sprintf("%s cannot move from %s to %s", e.Entity, from, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidState) match
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
