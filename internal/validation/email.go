package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// Email validates an address and returns it trimmed and lower-cased.
// Uses Go's built-in net/mail parser which follows RFC 5322
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// RFC 5321: total max 254 with @
	if len(email) > 254 {
		return "", errors.New("email address is too long (max 254 characters)")
	}

	if email == "" {
		return "", errors.New("email address is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errors.New("invalid email address format")
	}

	return email, nil
}
