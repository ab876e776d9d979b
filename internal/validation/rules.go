// Package validation provides custom validation rules for the application.
package validation

import (
	"errors"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/iou/internal/errors"
)

const notBlankCode = "validation_not_blank"

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError(notBlankCode, "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// GrantType validates that a grant_type field holds exactly expected.
func GrantType(expected string) validation.Rule {
	return validation.In(expected).ErrorObject(
		validation.NewError("validation_grant_type", "must be "+expected),
	)
}

// WrapValidationError wraps validation errors as domain errors. A missing or blank
// field becomes ErrMissingParameter; any other rule failure becomes ErrBadRequest.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if isMissing(err) {
		return apperrors.Wrap(apperrors.ErrMissingParameter, err.Error())
	}
	return apperrors.Wrap(apperrors.ErrBadRequest, err.Error())
}

func isMissing(err error) bool {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for _, fieldErr := range fieldErrs {
			if isMissing(fieldErr) {
				return true
			}
		}
		return false
	}

	var ruleErr validation.Error
	if errors.As(err, &ruleErr) {
		code := ruleErr.Code()
		return code == validation.ErrRequired.Code() || code == notBlankCode
	}
	return false
}
