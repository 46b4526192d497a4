package creator

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock parses "HH:MM" (or "HH:MM:SS", seconds checked then dropped) into
// minutes after midnight. The hour has one or two digits.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", value)
	}

	for i, part := range parts {
		if !isDigits(part) || len(part) > 2 || (i > 0 && len(part) != 2) {
			return 0, fmt.Errorf("invalid time %q: want HH:MM", value)
		}
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds > 59 {
			return 0, fmt.Errorf("invalid second in %q", value)
		}
	}

	return hours*60 + minutes, nil
}

// FormatClock renders minutes after midnight as zero padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
