package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// DisplayName validates a profile name and returns it trimmed.
func DisplayName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return "", errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > 100 {
		return "", errors.New("name is too long (max 100 characters)")
	}

	return trimmed, nil
}
