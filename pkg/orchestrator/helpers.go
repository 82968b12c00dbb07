package orchestrator

import (
	"fmt"
	"time"
)

// dueDateLayouts are the date/time formats accepted from an LLM-composed
// due_date argument, tried in order.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime parses a due_date tool argument. An empty string is not an
// error — callers treat a zero time.Time as "leave unchanged" or reject
// it themselves when the field is required.
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("orchestrator: unrecognized due_date %q", raw)
}
