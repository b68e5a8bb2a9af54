package services

import (
	"strings"

	"github.com/dmitrijs2005/dktlearn/internal/common"
)

// ValidationError reports input rejected before any network call. Problems
// lists every violated rule for Field, not just the first.
type ValidationError struct {
	Field    string
	Problems []string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == common.ErrValidation
}

func invalid(field string, problems ...string) *ValidationError {
	return &ValidationError{Field: field, Problems: problems}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
