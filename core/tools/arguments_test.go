package tools

import (
	"slices"
	"testing"
)

func TestSilenceSeconds(t *testing.T) {
	testCases := []struct {
		name     string
		args     map[string]any
		expected int
	}{
		{name: "seconds", args: map[string]any{"seconds": 30.0}, expected: 30},
		{name: "duration fallback", args: map[string]any{"duration": 12.0}, expected: 12},
		{name: "seconds wins", args: map[string]any{"seconds": 5.0, "duration": 12.0}, expected: 5},
		{name: "numeric string", args: map[string]any{"seconds": " 20 "}, expected: 20},
		{name: "clamped", args: map[string]any{"seconds": -4.0}, expected: 1},
		{name: "zero clamped", args: map[string]any{"seconds": 0.0}, expected: 1},
		{name: "invalid", args: map[string]any{"seconds": "soon"}, expected: DefaultSilenceSeconds},
		{name: "absent", args: map[string]any{}, expected: DefaultSilenceSeconds},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := SilenceSeconds(testCase.args); got != testCase.expected {
				t.Fatalf("expected %d, got %d", testCase.expected, got)
			}
		})
	}
}

func TestParseArgumentsFallsBackToEmptyObject(t *testing.T) {
	for _, text := range []string{"", "   ", "{", "[1,2]", "null"} {
		args, _ := ParseArguments(text)
		if args == nil || len(args) != 0 {
			t.Fatalf("expected empty object for %q, got %v", text, args)
		}
	}

	args, err := ParseArguments(`{"seconds":5}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args["seconds"] != 5.0 {
		t.Fatalf("expected seconds=5, got %v", args["seconds"])
	}
}

func TestStrings(t *testing.T) {
	args := map[string]any{
		"players": []any{"A", 3, " B "},
		"guests":  "a@x.io, b@x.io",
	}

	if got := Strings(args, "players"); !slices.Equal(got, []string{"A", "B"}) {
		t.Fatalf("unexpected players: %v", got)
	}
	if got := Strings(args, "attendees", "guests"); !slices.Equal(got, []string{"a@x.io", "b@x.io"}) {
		t.Fatalf("unexpected guests: %v", got)
	}
	if got := Strings(args, "missing"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
