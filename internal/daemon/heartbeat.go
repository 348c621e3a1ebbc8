package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/haasonsaas/nexuscore/internal/agent"
	"github.com/haasonsaas/nexuscore/internal/memory"
	"github.com/haasonsaas/nexuscore/internal/security"
)

// ActiveHours restricts when heartbeat ticks actually fire, carried
// forward from the teacher's
// internal/agents/heartbeat.ActiveHoursConfig/IsActiveAt, trimmed of the
// "user" timezone alias since this kernel has no multi-user identity
// concept.
type ActiveHours struct {
	Enabled  bool
	Start    string // "HH:MM"
	End      string // "HH:MM", "24:00" allowed
	Timezone string // "", "local", "utc", or an IANA name
	Days     []int  // 0=Sunday .. 6=Saturday; empty means every day
}

var activeHoursTime = regexp.MustCompile(`^([01]\d|2[0-3]|24):([0-5]\d)$`)

func parseClock(s string, allow24 bool) (int, error) {
	if !activeHoursTime.MatchString(s) {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, err
	}
	if hour == 24 {
		if !allow24 || minute != 0 {
			return 0, fmt.Errorf("24:00 is only valid as an end time")
		}
		return 24 * 60, nil
	}
	return hour*60 + minute, nil
}

func resolveLocation(tz string) (*time.Location, error) {
	switch tz {
	case "", "local":
		return time.Local, nil
	case "utc", "UTC":
		return time.UTC, nil
	default:
		return time.LoadLocation(tz)
	}
}

// IsActiveAt reports whether t falls within the configured window.
// A disabled config is always active.
func (a ActiveHours) IsActiveAt(t time.Time) (bool, error) {
	if !a.Enabled {
		return true, nil
	}
	loc, err := resolveLocation(a.Timezone)
	if err != nil {
		return false, fmt.Errorf("invalid timezone %q: %w", a.Timezone, err)
	}
	local := t.In(loc)

	if len(a.Days) > 0 {
		ok := false
		weekday := int(local.Weekday())
		for _, d := range a.Days {
			if d == weekday {
				ok = true
				break
			}
		}
		if !ok {
			return false, nil
		}
	}

	start, err := parseClock(a.Start, false)
	if err != nil {
		return false, fmt.Errorf("invalid start: %w", err)
	}
	end, err := parseClock(a.End, true)
	if err != nil {
		return false, fmt.Errorf("invalid end: %w", err)
	}
	minutes := local.Hour()*60 + local.Minute()
	if start <= end {
		return minutes >= start && minutes < end, nil
	}
	// Window wraps past midnight.
	return minutes >= start || minutes < end, nil
}

// HeartbeatRunner ticks on a floor-5-minute interval, reads
// <workspace>/HEARTBEAT.md on each active tick, and runs one independent
// tool-loop session per non-blank, non-comment line — spec.md §9's Open
// Question resolved exactly as recorded in DESIGN.md: each line is a
// fresh session, never a continuation.
type HeartbeatRunner struct {
	Workspace   string
	Provider    agent.Provider
	Registry    *agent.Registry
	Memory      *memory.Store
	Security    *security.Policy
	Model       string
	Temperature float64
	Interval    time.Duration
	ActiveHours ActiveHours
	Logger      *slog.Logger
	Now         func() time.Time
}

const minHeartbeatInterval = 5 * time.Minute

// NewHeartbeatRunner builds a runner with the floor-5-minute interval
// rule applied.
func NewHeartbeatRunner(workspace string, provider agent.Provider, registry *agent.Registry, mem *memory.Store, interval time.Duration) *HeartbeatRunner {
	if interval < minHeartbeatInterval {
		interval = minHeartbeatInterval
	}
	return &HeartbeatRunner{
		Workspace:   workspace,
		Provider:    provider,
		Registry:    registry,
		Memory:      mem,
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		Interval:    interval,
		Logger:      slog.Default().With("component", "heartbeat"),
		Now:         time.Now,
	}
}

// Run implements daemon.Component: ticks until ctx is cancelled.
func (r *HeartbeatRunner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *HeartbeatRunner) tickInterval() time.Duration {
	if r.Interval < minHeartbeatInterval {
		return minHeartbeatInterval
	}
	return r.Interval
}

func (r *HeartbeatRunner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *HeartbeatRunner) tick(ctx context.Context) {
	active, err := r.ActiveHours.IsActiveAt(r.now())
	if err != nil {
		r.Logger.Warn("active hours check failed", "error", err)
		return
	}
	if !active {
		return
	}

	lines, err := r.readHeartbeatLines()
	if err != nil {
		if !os.IsNotExist(err) {
			r.Logger.Warn("read HEARTBEAT.md failed", "error", err)
		}
		return
	}

	for _, line := range lines {
		r.runLine(ctx, line)
	}
}

func (r *HeartbeatRunner) readHeartbeatLines() ([]string, error) {
	path := filepath.Join(r.Workspace, "HEARTBEAT.md")
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func (r *HeartbeatRunner) runLine(ctx context.Context, line string) {
	text := line
	if r.Memory != nil {
		if entries, err := r.Memory.All(); err == nil {
			text = agent.InjectMemoryContext(line, entries)
		}
	}

	history := agent.NewHistory("You are an autonomous agent processing a scheduled heartbeat task.", text)
	opts := agent.Options{Model: r.Model, Temperature: r.Temperature, Security: r.Security}
	if _, err := agent.RunToolLoop(ctx, r.Provider, history, r.Registry, opts); err != nil {
		r.Logger.Warn("heartbeat line failed", "line", line, "error", err)
	}
}
