package protocol

import (
	"fmt"
	"time"
)

// Format renders m for a terminal, prefixed with the local time of day.
func Format(m Message, at time.Time) string {
	ts := at.Format(time.TimeOnly)
	switch m.kind {
	case KindChat:
		return fmt.Sprintf("[%s] %s: %s", ts, m.sender, m.body)
	case KindPrivate:
		return fmt.Sprintf("[%s] (private) %s -> %s: %s", ts, m.sender, m.target, m.body)
	case KindServerNotice, KindAuthSuccess:
		return fmt.Sprintf("[%s] %s", ts, m.body)
	case KindAuthFailure, KindError:
		return fmt.Sprintf("[%s] error: %s", ts, m.body)
	default:
		return fmt.Sprintf("[%s] %s", ts, m.String())
	}
}
