package core

import (
	"fmt"
	"strings"
	"time"
)

// parseDurationField parses an optional Go duration string from config.
// Empty means "unset" and yields zero, letting the component default apply.
func parseDurationField(name, v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", name, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must not be negative", name)
	}
	return d, nil
}
