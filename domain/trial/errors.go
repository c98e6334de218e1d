package trial

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Load errors
	ErrDuplicateSubject = errors.New("duplicate subject with conflicting attributes")
	ErrDuplicateSample  = errors.New("duplicate sample with conflicting attributes")

	// Statistical conditions reported per population, never fatal
	ErrInsufficientData = errors.New("insufficient sample size")
	ErrZeroVariance     = errors.New("zero variance in both groups")
)

// NewFieldError reports a validation failure on a single named field.
func NewFieldError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// NewDuplicateSubjectError names the subject whose repeated rows disagree.
func NewDuplicateSubjectError(subjectID string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateSubject, subjectID)
}

// NewDuplicateSampleError names the sample whose repeated rows disagree.
func NewDuplicateSampleError(sampleID string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateSample, sampleID)
}

// IsStatisticalCondition reports whether err is one of the per-population
// conditions that a comparison records instead of failing.
func IsStatisticalCondition(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrZeroVariance)
}
