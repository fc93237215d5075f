// Package validation checks the string formats behind the uuid, email and date column types.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day form accepted for date columns
const DateLayout = "2006-01-02"

// ValidateDate accepts a YYYY-MM-DD day or an RFC 3339 timestamp
func ValidateDate(value string) error {
	if _, err := time.Parse(DateLayout, value); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return nil
	}
	return fmt.Errorf("invalid date format, expected YYYY-MM-DD or RFC 3339 (e.g., '2024-01-13')")
}

// ValidateUUID accepts the canonical textual UUID forms
func ValidateUUID(value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("invalid uuid: %w", err)
	}
	return nil
}

// ValidateEmail validates an email string with basic format checking
func ValidateEmail(value string) error {
	localPart, domain, ok := strings.Cut(value, "@")
	if !ok {
		return fmt.Errorf("email must contain @ symbol")
	}
	if strings.Contains(domain, "@") {
		return fmt.Errorf("email must have exactly one @ symbol")
	}

	if localPart == "" {
		return fmt.Errorf("email local part (before @) cannot be empty")
	}
	if strings.ContainsAny(value, " \t\r\n") {
		return fmt.Errorf("email cannot contain whitespace")
	}

	if domain == "" {
		return fmt.Errorf("email domain (after @) cannot be empty")
	}
	if !strings.Contains(domain, ".") {
		return fmt.Errorf("email domain must contain a dot (e.g., 'example.com')")
	}

	// Check domain doesn't start or end with dot
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("email domain cannot start or end with a dot")
	}
	if tld := domain[strings.LastIndex(domain, ".")+1:]; len(tld) < 2 {
		return fmt.Errorf("email top-level domain must have at least two characters")
	}

	return nil
}
