package utils

import (
	"errors"
	"strings"
	"unicode"
)

const maxIDLength = 100

// ValidateID checks a route or stop identifier taken from a URL or form
// before it is forwarded to the route service.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > maxIDLength {
		return errors.New("id too long (max 100 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || r == '/' {
			return errors.New("id contains invalid characters")
		}
	}

	return nil
}

// SanitizeFilename strips directories and control characters from an
// uploaded file name.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}
