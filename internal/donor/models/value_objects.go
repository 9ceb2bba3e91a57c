package models

import (
	"fmt"
	"strings"

	"hemolink/internal/sentinel"
)

// BloodGroup is one of the eight ABO/Rh blood groups.
type BloodGroup string

const (
	APositive  BloodGroup = "A+"
	ANegative  BloodGroup = "A-"
	BPositive  BloodGroup = "B+"
	BNegative  BloodGroup = "B-"
	ABPositive BloodGroup = "AB+"
	ABNegative BloodGroup = "AB-"
	OPositive  BloodGroup = "O+"
	ONegative  BloodGroup = "O-"
)

// ValidBloodGroups is the single source of truth for supported groups.
var ValidBloodGroups = map[BloodGroup]bool{
	APositive:  true,
	ANegative:  true,
	BPositive:  true,
	BNegative:  true,
	ABPositive: true,
	ABNegative: true,
	OPositive:  true,
	ONegative:  true,
}

// IsValid checks if the blood group is one of the supported enum values.
func (b BloodGroup) IsValid() bool {
	return ValidBloodGroups[b]
}

func (b BloodGroup) String() string {
	return string(b)
}

// ParseBloodGroup canonicalizes user input ("o+", " ab- ") into a BloodGroup.
func ParseBloodGroup(s string) (BloodGroup, error) {
	group := BloodGroup(strings.ToUpper(strings.TrimSpace(s)))
	if !group.IsValid() {
		return "", fmt.Errorf("invalid blood group %q: %w", s, sentinel.ErrInvalidInput)
	}
	return group, nil
}
