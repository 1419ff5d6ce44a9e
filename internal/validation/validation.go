// Package validation holds the input rules that must report every
// violation at once rather than stopping at the first.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Password rule messages, in the order they are checked.
const (
	MsgPasswordLength    = "Password must be at least 8 characters long"
	MsgPasswordUppercase = "Password must contain at least one uppercase letter"
	MsgPasswordLowercase = "Password must contain at least one lowercase letter"
	MsgPasswordDigit     = "Password must contain at least one number"
)

// Result is the outcome of a rule set. Errors is empty when Valid.
type Result struct {
	Valid  bool
	Errors []string
}

func result(errs []string) Result {
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// Email reports whether s looks like local@domain.tld.
func Email(s string) bool {
	return emailRE.MatchString(s)
}

// Password checks length, upper case, lower case and digit rules and
// returns every rule that failed.
func Password(p string) Result {
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	var errs []string
	if utf8.RuneCountInString(p) < MinPasswordLength {
		errs = append(errs, MsgPasswordLength)
	}
	if !upper {
		errs = append(errs, MsgPasswordUppercase)
	}
	if !lower {
		errs = append(errs, MsgPasswordLowercase)
	}
	if !digit {
		errs = append(errs, MsgPasswordDigit)
	}
	return result(errs)
}

// Required fails when value is empty after trimming.
func Required(value, field string) Result {
	if strings.TrimSpace(value) == "" {
		return result([]string{field + " is required"})
	}
	return result(nil)
}

// StringLength checks that value has between min and max characters.
func StringLength(value, field string, min, max int) Result {
	n := utf8.RuneCountInString(value)
	var errs []string
	if n < min {
		errs = append(errs, fmt.Sprintf("%s must be at least %d characters long", field, min))
	}
	if n > max {
		errs = append(errs, fmt.Sprintf("%s must be no more than %d characters long", field, max))
	}
	return result(errs)
}

// Merge combines several results into one.
func Merge(rs ...Result) Result {
	var errs []string
	for _, r := range rs {
		errs = append(errs, r.Errors...)
	}
	return result(errs)
}
