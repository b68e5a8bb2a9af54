package services

import (
	"errors"
	"testing"

	"github.com/dmitrijs2005/dktlearn/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		want []string
	}{
		{"empty violates every rule", "", []string{PwTooShort, PwNoUpper, PwNoLower, PwNoDigit, PwNoSpecial}},
		{"abc", "abc", []string{PwTooShort, PwNoUpper, PwNoDigit, PwNoSpecial}},
		{"valid", "Abcdef1!", nil},
		{"seven chars", "Abcde1!", []string{PwTooShort}},
		{"special outside set", "Abcdef12_", []string{PwNoSpecial}},
		{"each special counts", `Abcdefg1"`, nil},
		{"no lower", "ABCDEF1!", []string{PwNoLower}},
		{"multibyte length counts runes", "Ação1!xy", nil},
		{"accented capital is not uppercase", "Éabcdef1!", []string{PwNoUpper}},
		{"accented small is not lowercase", "ABCDÉFç1!", []string{PwNoLower}},
		{"non-ascii digit is not a digit", "Abcdef١!", []string{PwNoDigit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ValidatePassword(tt.pw)); diff != "" {
				t.Errorf("ValidatePassword(%q) mismatch (-want +got):\n%s", tt.pw, diff)
			}
		})
	}
}

func TestValidatePassword_ReportsDistinctReasons(t *testing.T) {
	got := ValidatePassword("")
	seen := map[string]bool{}
	for _, p := range got {
		require.False(t, seen[p], "duplicate %q", p)
		seen[p] = true
	}
	assert.Len(t, seen, 5)
}

func TestCheckPassword_IsValidationError(t *testing.T) {
	err := checkPassword("password", "short")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
	assert.NotEmpty(t, verr.Problems)
}
