package ledger

import (
	"regexp"
	"strings"
)

var platePattern = regexp.MustCompile(`^[A-Z0-9 -]{3,10}$`)

// NormalizePlate canonicalizes a plate for storage and comparison.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

func ValidPlate(normalized string) bool {
	return platePattern.MatchString(normalized)
}
