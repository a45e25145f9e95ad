// Package address validates and normalizes EVM wallet addresses.
package address

import (
	"errors"
	"regexp"
	"strings"
)

// 0x prefix followed by exactly 40 hex digits, any case.
var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

var ErrInvalidFormat = errors.New("invalid wallet address format")

// Valid reports whether raw is a well-formed wallet address.
func Valid(raw string) bool {
	return addressPattern.MatchString(raw)
}

// Validate returns ErrInvalidFormat unless raw is a well-formed address.
func Validate(raw string) error {
	if !Valid(raw) {
		return ErrInvalidFormat
	}
	return nil
}

// Normalize returns the canonical lowercase form of a validated address.
// All lookups and writes operate on the normalized form, so mixed-case
// submissions of the same digits converge on one record.
func Normalize(raw string) string {
	return strings.ToLower(raw)
}
