package services

import (
	"fmt"
)

// ValidationError describes input rejected by a field-level or cross-field
// rule. Field is empty for cross-field violations.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// validateAreas enforces the area rules on a case about to be staged:
// every area must be non-negative, and a positive land area may not exceed
// a positive building area. Zero areas mean "not yet recorded" and are
// exempt from the cross-field check.
func validateAreas(landArea, buildingArea, violationArea float64) error {
	for _, a := range []struct {
		field string
		value float64
	}{
		{"land_area", landArea},
		{"building_area", buildingArea},
		{"violation_area", violationArea},
	} {
		if a.value < 0 {
			return &ValidationError{Field: a.field, Reason: "negative area"}
		}
	}

	if landArea > 0 && buildingArea > 0 && landArea > buildingArea {
		return &ValidationError{Reason: "land area exceeds building area"}
	}

	return nil
}
