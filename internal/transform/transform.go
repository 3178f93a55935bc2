package transform

import (
	"fmt"

	"github.com/rgehrsitz/taxplan/internal/domain"
)

// ScenarioTransform defines the interface for all scenario transformations.
// Transforms are composable operations on a ScenarioInput, used by scenario
// comparison, the contribution optimiser and the CLI.
type ScenarioTransform interface {
	// Apply returns a modified copy of base.
	Apply(base domain.ScenarioInput) (domain.ScenarioInput, error)

	// Name returns a short identifier for this transform (e.g., "set_rrsp").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks the transform parameters against base without applying it.
	Validate(base domain.ScenarioInput) error
}

// ApplyTransforms applies a sequence of transforms to a base input.
// Each transform receives the output of the previous one.
func ApplyTransforms(base domain.ScenarioInput, transforms []ScenarioTransform) (domain.ScenarioInput, error) {
	current := base

	for i, transform := range transforms {
		if transform == nil {
			return base, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return base, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return base, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}

		current = next
	}

	return current, nil
}

// Describe joins the descriptions of a transform chain
func Describe(transforms []ScenarioTransform) []string {
	out := make([]string, 0, len(transforms))
	for _, t := range transforms {
		if t != nil {
			out = append(out, t.Description())
		}
	}
	return out
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
