// Package forms holds the client-side checks of the hospital's data entry
// forms: the BMI calculator, the password strength meter and registration
// validation.
package forms

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidMeasurement = errors.New("invalid measurement")

// BMI returns weight / (height in metres)^2 with two decimals.
func BMI(weightKg, heightCm float64) (string, error) {
	if math.IsNaN(weightKg) || math.IsNaN(heightCm) || weightKg <= 0 || heightCm <= 0 {
		return "", fmt.Errorf("%w: weight %v kg, height %v cm", ErrInvalidMeasurement, weightKg, heightCm)
	}
	m := heightCm / 100
	return strconv.FormatFloat(weightKg/(m*m), 'f', 2, 64), nil
}

// ParseBMI is BMI for raw form input.
func ParseBMI(weight, height string) (string, error) {
	w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil {
		return "", fmt.Errorf("%w: weight %q", ErrInvalidMeasurement, weight)
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(height), 64)
	if err != nil {
		return "", fmt.Errorf("%w: height %q", ErrInvalidMeasurement, height)
	}
	return BMI(w, h)
}

type StrengthLevel string

const (
	StrengthWeak   StrengthLevel = "weak"
	StrengthMedium StrengthLevel = "medium"
	StrengthStrong StrengthLevel = "strong"
)

// PasswordStrength scores one point each for length >= 8, a digit, a
// lowercase letter, an uppercase letter and a symbol.
func PasswordStrength(pw string) (int, StrengthLevel) {
	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range pw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		default:
			hasSymbol = true
		}
	}

	score := 0
	for _, ok := range []bool{utf8.RuneCountInString(pw) >= 8, hasDigit, hasLower, hasUpper, hasSymbol} {
		if ok {
			score++
		}
	}

	switch {
	case score < 2:
		return score, StrengthWeak
	case score < 4:
		return score, StrengthMedium
	default:
		return score, StrengthStrong
	}
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}

type Registration struct {
	Username        string `validate:"required,username"`
	Email           string `validate:"omitempty,email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// ValidationError lists every failed field with a user-facing message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range []string{"Username", "Email", "Password", "ConfirmPassword"} {
		if msg, ok := e.Fields[f]; ok {
			parts = append(parts, msg)
		}
	}
	return "invalid registration: " + strings.Join(parts, "; ")
}

func (r Registration) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("error validating registration: %w", err)
	}

	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "username":
		return "username may only contain letters, numbers, dots and underscores"
	case "eqfield":
		return "passwords do not match"
	case "email":
		return "email address is not valid"
	default:
		return strings.ToLower(fe.Field()) + " is not valid"
	}
}
