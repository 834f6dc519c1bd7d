package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// CourseIDPattern accepts "15-122" and the bare form "15122".
	CourseIDPattern = `^\d{2}-?\d{3}$`

	// CourseIDMinLength and CourseIDMaxLength bound the raw value before the pattern runs.
	CourseIDMinLength = 5
	CourseIDMaxLength = 6
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	CourseID *regexp.Regexp
}{
	CourseID: regexp.MustCompile(CourseIDPattern),
}

// StringValidation is a small builder for single string checks
type StringValidation struct {
	Value   string
	MinLen  int
	MaxLen  int
	Pattern *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{Value: value}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// Validate performs validation. An empty value is always invalid.
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return false
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// IsCourseID reports whether s looks like a course id.
func IsCourseID(s string) bool {
	return NewStringValidation(s).
		WithMinLength(CourseIDMinLength).
		WithMaxLength(CourseIDMaxLength).
		WithPattern(CompiledPatterns.CourseID).
		Validate()
}

// RegisterCatalogRules adds the catalog tags to v:
//
//	courseid  a course id such as 15-122 or 15122
func RegisterCatalogRules(v *validator.Validate) error {
	return v.RegisterValidation("courseid", func(fl validator.FieldLevel) bool {
		return IsCourseID(fl.Field().String())
	})
}
