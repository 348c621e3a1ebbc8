package cron

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// Normalize accepts a 5, 6, or 7 whitespace-separated field crontab
// expression. A 5-field expression means "minute hour dom mon dow" and
// is promoted by prepending "0 " for seconds; 6- and 7-field input is
// used verbatim (the parser tolerates but does not require a leading
// year field). Any other field count is rejected.
func Normalize(expr string) (string, error) {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 5:
		return "0 " + strings.Join(fields, " "), nil
	case 6, 7:
		return strings.Join(fields, " "), nil
	default:
		return "", fmt.Errorf("cron: expression %q has %d fields, want 5, 6, or 7", expr, len(fields))
	}
}

// Parse normalizes and compiles expr, returning a robfig/cron/v3 Schedule
// usable to compute subsequent firing times.
func Parse(expr string) (cron.Schedule, error) {
	normalized, err := Normalize(expr)
	if err != nil {
		return nil, err
	}
	sched, err := parser.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("cron: invalid expression %q: %w", expr, err)
	}
	return sched, nil
}
