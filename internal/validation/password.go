package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const MinPasswordLength = 8

var (
	upperRegex  = regexp.MustCompile(`[A-Z]`)
	lowerRegex  = regexp.MustCompile(`[a-z]`)
	numberRegex = regexp.MustCompile(`[0-9]`)
	symbolRegex = regexp.MustCompile("[!@#$%^&*()_+\\-=\\[\\]{};':\"\\\\|,.<>/?~`]")
)

type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

type PasswordRequirements struct {
	MinLength    bool `json:"minLength"`
	HasUppercase bool `json:"hasUppercase"`
	HasLowercase bool `json:"hasLowercase"`
	HasNumber    bool `json:"hasNumber"`
	HasSymbol    bool `json:"hasSymbol"`
}

func (r PasswordRequirements) passed() int {
	n := 0
	for _, ok := range []bool{r.MinLength, r.HasUppercase, r.HasLowercase, r.HasNumber, r.HasSymbol} {
		if ok {
			n++
		}
	}
	return n
}

type PasswordResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Strength Strength `json:"strength"`
}

func CheckPasswordRequirements(password string) PasswordRequirements {
	return PasswordRequirements{
		MinLength:    utf8.RuneCountInString(password) >= MinPasswordLength,
		HasUppercase: upperRegex.MatchString(password),
		HasLowercase: lowerRegex.MatchString(password),
		HasNumber:    numberRegex.MatchString(password),
		HasSymbol:    symbolRegex.MatchString(password),
	}
}

// ValidatePasswordStrength reports every failed rule and grades the password:
// strong needs all rules and at least 12 characters, medium needs four rules.
func ValidatePasswordStrength(password string) PasswordResult {
	req := CheckPasswordRequirements(password)
	errs := make([]string, 0, 5)

	if !req.MinLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	}
	if !req.HasUppercase {
		errs = append(errs, "password must contain at least 1 uppercase letter")
	}
	if !req.HasLowercase {
		errs = append(errs, "password must contain at least 1 lowercase letter")
	}
	if !req.HasNumber {
		errs = append(errs, "password must contain at least 1 number")
	}
	if !req.HasSymbol {
		errs = append(errs, "password must contain at least 1 special character (!@#$%^&*...)")
	}

	strength := StrengthWeak
	switch passed := req.passed(); {
	case passed == 5 && utf8.RuneCountInString(password) >= 12:
		strength = StrengthStrong
	case passed >= 4:
		strength = StrengthMedium
	}

	return PasswordResult{Valid: len(errs) == 0, Errors: errs, Strength: strength}
}

// FormatPasswordErrors joins the failures into a single message.
func FormatPasswordErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return "password does not meet the requirements: " + strings.Join(errs, "; ")
}
