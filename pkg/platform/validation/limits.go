// Package validation centralizes input size limits so every DTO rejects
// oversized fields with the same bounds and wording.
package validation

import (
	"fmt"

	dErrors "hemolink/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (64 KB).
	// Sufficient for JSON APIs while preventing memory exhaustion attacks.
	MaxBodySize = 64 * 1024
)

// Slice element count limits
const (
	// MaxHealthFlags is the maximum number of health flags per donor profile.
	MaxHealthFlags = 50
)

// String length limits
const (
	// MaxNameLength is the maximum length of a person's name.
	MaxNameLength = 120

	// MaxEmailLength is the maximum length of an email address.
	MaxEmailLength = 255

	// MaxPasswordLength is the bcrypt input cap; longer passwords would be
	// silently truncated by the hash.
	MaxPasswordLength = 72

	// MaxCityLength is the maximum length of a city name.
	MaxCityLength = 80

	// MaxPhoneLength is the maximum length of a contact phone number.
	MaxPhoneLength = 32

	// MaxHealthFlagLength is the maximum length of an individual health flag.
	MaxHealthFlagLength = 100

	// MaxHealthTextLength is the maximum length of a free-text health summary.
	MaxHealthTextLength = 2000

	// MaxNoteLength is the maximum length of a free-text note on a request.
	MaxNoteLength = 500
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckEachStringLength validates that each string in a slice does not exceed the maximum length.
func CheckEachStringLength(fieldName string, values []string, max int) error {
	for _, v := range values {
		if len(v) > max {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
		}
	}
	return nil
}
