// Package subdomain normalizes, validates and extracts restaurant subdomains.
package subdomain

import (
	"regexp"
	"strings"
)

const (
	MinLength = 3
	MaxLength = 63
)

// Pattern is the character set accepted for a subdomain. The routing layer applies only this
// check; length and reserved names are enforced by Validate.
var Pattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Reserved holds subdomains that can never be assigned to a restaurant.
var Reserved = map[string]struct{}{
	"www":       {},
	"api":       {},
	"admin":     {},
	"dashboard": {},
	"app":       {},
	"mail":      {},
	"ftp":       {},
	"localhost": {},
	"test":      {},
	"staging":   {},
	"dev":       {},
}

// Reason identifies the first rule a candidate subdomain broke.
type Reason string

const (
	ReasonEmpty         Reason = "empty"
	ReasonTooShort      Reason = "too_short"
	ReasonTooLong       Reason = "too_long"
	ReasonBadCharacters Reason = "bad_characters"
	ReasonHyphenEdge    Reason = "hyphen_edge"
	ReasonReserved      Reason = "reserved"
)

var reasonMessages = map[Reason]string{
	ReasonEmpty:         "Subdomain is required",
	ReasonTooShort:      "Subdomain must be at least 3 characters",
	ReasonTooLong:       "Subdomain must be at most 63 characters",
	ReasonBadCharacters: "Subdomain can only contain lowercase letters, numbers, and hyphens",
	ReasonHyphenEdge:    "Subdomain cannot start or end with a hyphen",
	ReasonReserved:      "This subdomain is reserved and cannot be used",
}

// Message is the user-facing text for the reason.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return "Invalid subdomain"
}

// Result is the outcome of Validate. Reason is empty when Valid is true.
type Result struct {
	Valid  bool
	Reason Reason
}

// Normalize lower-cases and trims raw user input.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Validate checks a candidate in a fixed order and reports only the first failure:
// empty, too short, too long, character set, hyphen at either edge, reserved.
func Validate(candidate string) Result {
	switch {
	case candidate == "":
		return invalid(ReasonEmpty)
	case len(candidate) < MinLength:
		return invalid(ReasonTooShort)
	case len(candidate) > MaxLength:
		return invalid(ReasonTooLong)
	case !Pattern.MatchString(candidate):
		return invalid(ReasonBadCharacters)
	case strings.HasPrefix(candidate, "-") || strings.HasSuffix(candidate, "-"):
		return invalid(ReasonHyphenEdge)
	case IsReserved(candidate):
		return invalid(ReasonReserved)
	}
	return Result{Valid: true}
}

// IsReserved reports whether s is a reserved name, ignoring case.
func IsReserved(s string) bool {
	_, ok := Reserved[strings.ToLower(s)]
	return ok
}

// WellFormed is the syntactic check used at request time.
func WellFormed(s string) bool {
	return Pattern.MatchString(s)
}

// PublicHost joins a subdomain with the base domain, e.g. pizza.example.com.
func PublicHost(sub, baseDomain string) string {
	if baseDomain == "" {
		baseDomain = "example.com"
	}
	return sub + "." + baseDomain
}

func invalid(r Reason) Result { return Result{Reason: r} }
