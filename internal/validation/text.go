package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxAnswerLength  = 4000
	MaxMessageLength = 2000
	MaxTitleLength   = 200
	MaxNoteLength    = 2000
	MaxJournalLength = 20000
	MaxEmojiLength   = 16
)

// Text trims value and checks it is non-empty and at most max runes.
func Text(field, value string, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(trimmed) > max {
		return "", fmt.Errorf("%s is too long (max %d characters)", field, max)
	}
	return trimmed, nil
}

// OptionalText is Text for fields that may be empty.
func OptionalText(field, value string, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if utf8.RuneCountInString(trimmed) > max {
		return "", fmt.Errorf("%s is too long (max %d characters)", field, max)
	}
	return trimmed, nil
}

// Emoji accepts a short grapheme sequence such as a flag or a skin-toned emoji.
func Emoji(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("emoji is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxEmojiLength || strings.ContainsAny(trimmed, " \t\n") {
		return "", fmt.Errorf("emoji must be a single emoji")
	}
	return trimmed, nil
}
