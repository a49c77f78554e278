package scheduling

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestZoneFromLink(t *testing.T) {
	testCases := []struct {
		name     string
		target   string
		expected string
	}{
		{name: "absolute", target: "/usr/share/zoneinfo/Europe/Zagreb", expected: "Europe/Zagreb"},
		{name: "relative", target: "../usr/share/zoneinfo/America/New_York", expected: "America/New_York"},
		{name: "posix tree", target: "/usr/share/zoneinfo/posix/Asia/Tokyo", expected: "Asia/Tokyo"},
		{name: "not a zoneinfo path", target: "/etc/zone", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := zoneFromLink(tc.target); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestLocalZone(t *testing.T) {
	testCases := []struct {
		name     string
		tz       string
		expected string
	}{
		{name: "named zone", tz: "Europe/Berlin", expected: "Europe/Berlin"},
		{name: "colon prefix", tz: ":Europe/Zagreb", expected: "Europe/Zagreb"},
		{name: "zoneinfo path", tz: "/usr/share/zoneinfo/Asia/Tokyo", expected: "Asia/Tokyo"},
		{name: "empty means UTC", tz: "", expected: "UTC"},
		{name: "unknown zone", tz: "Not/AZone", expected: "UTC"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TZ", tc.tz)

			name, loc := LocalZone()
			if name != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, name)
			}
			if loc == nil || loc.String() == "Local" {
				t.Fatalf("expected a named location, got %v", loc)
			}
		})
	}
}

func TestNewUsesHostZoneName(t *testing.T) {
	t.Setenv("TZ", "Europe/Berlin")

	calendar := &stubCalendar{}
	orchestrator := New(calendar)

	if _, err := orchestrator.CheckAvailability(context.Background(), AvailabilityRequest{
		StartISO: "2025-11-23T10:00:00Z",
		EndISO:   "2025-11-23T11:00:00Z",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := orchestrator.ScheduleMeeting(context.Background(), ScheduleRequestFromArguments(map[string]any{
		"leadId":   "lead-1",
		"datetime": "2025-11-23T10:00:00Z",
	})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calendar.queries) != 1 || calendar.queries[0].TimeZone != "Europe/Berlin" {
		t.Fatalf("expected availability query in Europe/Berlin, got %+v", calendar.queries)
	}
	if len(calendar.bookings) != 1 || calendar.bookings[0].TimeZone != "Europe/Berlin" {
		t.Fatalf("expected booking in Europe/Berlin, got %+v", calendar.bookings)
	}
}

func TestWithLocalLocationResolvesName(t *testing.T) {
	t.Setenv("TZ", "")

	calendar := &stubCalendar{}
	orchestrator := New(calendar, WithLocation(time.Local))

	if _, err := orchestrator.ScheduleMeeting(context.Background(), ScheduleRequestFromArguments(map[string]any{
		"leadId":   "lead-1",
		"datetime": "2025-11-23T10:00:00Z",
	})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calendar.bookings[0].TimeZone; got != "UTC" {
		t.Fatalf("expected UTC, got %q", got)
	}
}
