package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

func (i Interval) StartISO() string { return formatISO(i.Start) }
func (i Interval) EndISO() string   { return formatISO(i.End) }

// Overlapping returns the busy intervals that intersect window.
func Overlapping(window Interval, busy []Interval) []Interval {
	var overlaps []Interval
	for _, interval := range busy {
		if window.Overlaps(interval) {
			overlaps = append(overlaps, interval)
		}
	}
	return overlaps
}

// FirstFit returns a slot of the given length at the start of the first free
// interval that begins at or after from and is long enough to hold it.
func FirstFit(free []Interval, from time.Time, length time.Duration) (Interval, bool) {
	for _, interval := range free {
		if interval.Start.Before(from) {
			continue
		}
		if interval.Duration() < length {
			continue
		}
		return Interval{Start: interval.Start, End: interval.Start.Add(length)}, true
	}
	return Interval{}, false
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime reads an ISO-8601 timestamp. Timestamps without an offset are
// read in loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

func formatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
