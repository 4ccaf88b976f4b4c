package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// wantJSON is true with --json or when stdout is not a terminal.
func wantJSON() bool {
	return outputJSON || !term.IsTerminal(int(os.Stdout.Fd()))
}

func writeJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func parseDateInput(input string) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	now := time.Now()
	switch strings.ToLower(input) {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	case "tomorrow":
		t := now.AddDate(0, 0, 1)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse(time.DateOnly, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	return parsed, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
