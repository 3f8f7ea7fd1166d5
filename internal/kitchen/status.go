// Package kitchen holds the order status machine driven by the kitchen display.
package kitchen

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusPaid      Status = "paid"
)

type Action string

const (
	ActionBump   Action = "bump"
	ActionRecall Action = "recall"
)

var ErrInvalidTransition = errors.New("invalid transition")

var bumpNext = map[Status]Status{
	StatusOpen:      StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusPaid,
}

var recallPrev = map[Status]Status{
	StatusReady:     StatusPreparing,
	StatusPreparing: StatusOpen,
}

// Bump advances one step. paid is terminal.
func Bump(s Status) (Status, error) {
	if next, ok := bumpNext[s]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: cannot bump from %q", ErrInvalidTransition, s)
}

// Recall reverses one step. Nothing recalls from open or paid.
func Recall(s Status) (Status, error) {
	if prev, ok := recallPrev[s]; ok {
		return prev, nil
	}
	return s, fmt.Errorf("%w: cannot recall from %q", ErrInvalidTransition, s)
}

func Apply(a Action, s Status) (Status, error) {
	switch a {
	case ActionBump:
		return Bump(s)
	case ActionRecall:
		return Recall(s)
	}
	return s, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
}

// ParseAction returns false for anything but bump or recall.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case ActionBump, ActionRecall:
		return a, true
	}
	return "", false
}

// DisplayStatuses are the statuses a kitchen screen shows.
func DisplayStatuses() []string {
	return []string{string(StatusOpen), string(StatusPreparing), string(StatusReady)}
}
