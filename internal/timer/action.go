package timer

import (
	"context"
	"fmt"
)

// Action is a user response to the countdown notification.
type Action string

const (
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionStop   Action = "stop"
)

// ParseAction parses a notification action id.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionPause, ActionResume, ActionStop:
		return a, nil
	}
	return "", fmt.Errorf("unknown notification action %q", s)
}

// HandleAction maps pause, resume and stop to Pause, Start and Reset.
func (e *Engine) HandleAction(ctx context.Context, a Action) error {
	switch a {
	case ActionPause:
		e.Pause(ctx)
	case ActionResume:
		e.Start(ctx)
	case ActionStop:
		e.Reset(ctx)
	default:
		return fmt.Errorf("unknown notification action %q", a)
	}
	return nil
}
