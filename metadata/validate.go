package metadata

import (
	"regexp"

	"github.com/artledger/certmint/models"
)

var (
	sha256Regex   = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)
	txHashRegex   = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	tokenIdRegex  = regexp.MustCompile(`^[0-9]+$`)
	recordIdRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// IsValidSHA256 reports whether s is exactly 64 hex characters.
func IsValidSHA256(s string) bool {
	return sha256Regex.MatchString(s)
}

// IsValidTxHash reports whether s is a 0x-prefixed 32-byte hash.
func IsValidTxHash(s string) bool {
	return txHashRegex.MatchString(s)
}

// IsValidTokenID reports whether s is a non-empty decimal string.
func IsValidTokenID(s string) bool {
	return tokenIdRegex.MatchString(s)
}

// IsValidRecordID reports whether s is UUID-shaped.
func IsValidRecordID(s string) bool {
	return recordIdRegex.MatchString(s)
}

// IsValidCategory reports membership in the closed work-category enum.
func IsValidCategory(s string) bool {
	for _, category := range models.WorkCategories {
		if s == category {
			return true
		}
	}
	return false
}

// IsValidLicenseType reports membership in the closed license-type enum.
func IsValidLicenseType(s string) bool {
	for _, licenseType := range models.LicenseTypes {
		if s == licenseType {
			return true
		}
	}
	return false
}
