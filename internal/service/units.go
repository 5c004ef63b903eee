package service

import (
	"fmt"
	"strings"
)

// Weights are stored in kilograms; other units are input and display
// conveniences mapped through their kilogram factor.
var weightUnitTable = map[string]float64{
	"kg":  1,
	"lb":  0.45359237,
	"lbs": 0.45359237,
}

func resolveWeightUnit(unit string) (float64, error) {
	u := strings.ToLower(strings.TrimSpace(unit))
	if u == "" {
		u = "kg"
	}
	factor, ok := weightUnitTable[u]
	if !ok {
		return 0, fmt.Errorf("%w: invalid weight unit %q (use kg or lb)", ErrInvalidInput, unit)
	}
	return factor, nil
}

// ConvertWeightToKg normalizes an input weight to kilograms.
func ConvertWeightToKg(value float64, unit string) (float64, error) {
	if value <= 0 {
		return 0, fmt.Errorf("%w: weight must be greater than 0", ErrInvalidInput)
	}
	factor, err := resolveWeightUnit(unit)
	if err != nil {
		return 0, err
	}
	return value * factor, nil
}

// WeightFromKg renders a stored kilogram weight in the requested unit.
func WeightFromKg(weightKg float64, unit string) (float64, error) {
	factor, err := resolveWeightUnit(unit)
	if err != nil {
		return 0, err
	}
	return weightKg / factor, nil
}
