// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

var (
	// purposeRegex matches purpose-of-use codes such as "treatment" or "research:oncology".
	purposeRegex = regexp.MustCompile(`^[a-z][a-z0-9_\-]*(:[a-z0-9_\-]+)*$`)
	// identifierRegex matches subject, actor and resource identifiers.
	identifierRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:@\-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Purpose validates a purpose-of-use code.
var Purpose = validation.NewStringRuleWithError(
	func(s string) bool {
		return purposeRegex.MatchString(s)
	},
	validation.NewError(
		"validation_purpose",
		"must be a lowercase purpose code (letters, digits, '-', '_' and ':' separators)",
	),
)

// Identifier validates subject, actor and resource identifiers.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return identifierRegex.MatchString(s)
	},
	validation.NewError("validation_identifier", "must be a valid identifier"),
)
