package validator

import (
	"errors"
	"regexp"
	"strings"
)

const (
	// MinLicenseLength is the shortest acceptable pharmacy license identifier
	MinLicenseLength = 6
	// MaxLicenseLength is the longest acceptable pharmacy license identifier
	MaxLicenseLength = 32
)

var (
	ErrLicenseEmpty     = errors.New("license is required")
	ErrLicenseLength    = errors.New("license length is out of bounds")
	ErrLicenseCharacter = errors.New("license may only contain letters, digits and dashes")
)

// licenseRegex accepts uppercase alphanumeric identifiers with optional
// dash-separated groups, e.g. "NL-AMS-004521".
var licenseRegex = regexp.MustCompile(`^[A-Z0-9]+(-[A-Z0-9]+)*$`)

// NormalizeLicense canonicalizes a license identifier before validation
// and storage: trims whitespace and uppercases.
func NormalizeLicense(license string) string {
	return strings.ToUpper(strings.TrimSpace(license))
}

// ValidateLicenseFormat checks that a normalized license identifier is
// well-formed. Uniqueness is a separate, store-enforced concern.
func ValidateLicenseFormat(license string) error {
	if license == "" {
		return ErrLicenseEmpty
	}
	if len(license) < MinLicenseLength || len(license) > MaxLicenseLength {
		return ErrLicenseLength
	}
	if !licenseRegex.MatchString(license) {
		return ErrLicenseCharacter
	}
	return nil
}
