package validation

import (
	"errors"
	"strings"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("reason: cannot be blank"))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "reason: cannot be blank")
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("cardiac arrest", NotBlank))
	assert.Error(t, validation.Validate("   ", NotBlank))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, validation.Validate("treatment", NoWhitespace))
	assert.Error(t, validation.Validate(" treatment", NoWhitespace))
}

func TestPurpose(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"treatment", true},
		{"research:oncology", true},
		{"payment_ops", true},
		{"Treatment", false},
		{"research:", false},
		{"1research", false},
		{"with space", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := validation.Validate(tt.value, Purpose)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	assert.NoError(t, validation.Validate("patient-42", Identifier))
	assert.NoError(t, validation.Validate("dr.smith@clinic", Identifier))
	assert.Error(t, validation.Validate("-leading", Identifier))
	assert.Error(t, validation.Validate("a b", Identifier))
}

func TestHex(t *testing.T) {
	assert.NoError(t, validation.Validate("", Hex))
	assert.NoError(t, validation.Validate("deadbeef", Hex))
	assert.Error(t, validation.Validate("xyz", Hex))
	assert.Error(t, validation.Validate(42, Hex))
}

func TestHexBytes(t *testing.T) {
	rule := HexBytes(16)
	assert.NoError(t, validation.Validate(strings.Repeat("ab", 16), rule))
	assert.NoError(t, validation.Validate("", rule))
	assert.ErrorContains(t, validation.Validate(strings.Repeat("ab", 15), rule), "exactly 16 bytes")
	assert.Error(t, validation.Validate("zz", rule))
}
