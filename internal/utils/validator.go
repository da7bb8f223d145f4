// internal/utils/validator.go
package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var isoDurationPattern = regexp.MustCompile(`^P(\d+Y)?(\d+M)?(\d+W)?(\d+D)?(T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?)?$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("iso_duration", validateISODuration)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// IsISODuration accepts ISO-8601 durations such as P30D, P1Y2M or PT12H.
func IsISODuration(value string) bool {
	if value == "P" || strings.HasSuffix(value, "T") {
		return false
	}
	return isoDurationPattern.MatchString(value)
}

// ParseISODuration converts an ISO-8601 duration into a time.Duration.
// Years and months are calendar-free approximations of 365 and 30 days.
func ParseISODuration(value string) (time.Duration, error) {
	if !IsISODuration(value) {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", value)
	}

	m := isoDurationPattern.FindStringSubmatch(value)
	day := 24 * time.Hour
	units := []struct {
		group int
		unit  time.Duration
	}{
		{1, 365 * day},
		{2, 30 * day},
		{3, 7 * day},
		{4, day},
		{6, time.Hour},
		{7, time.Minute},
	}

	var total time.Duration
	for _, u := range units {
		if m[u.group] == "" {
			continue
		}
		n, err := strconv.Atoi(m[u.group][:len(m[u.group])-1])
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", value, err)
		}
		total += time.Duration(n) * u.unit
	}

	if m[8] != "" {
		seconds, err := strconv.ParseFloat(m[8][:len(m[8])-1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", value, err)
		}
		total += time.Duration(seconds * float64(time.Second))
	}

	return total, nil
}

func validateISODuration(fl validator.FieldLevel) bool {
	return IsISODuration(fl.Field().String())
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "iso_duration":
		return e.Field() + " must be an ISO-8601 duration such as P30D"
	default:
		return e.Field() + " is invalid"
	}
}
