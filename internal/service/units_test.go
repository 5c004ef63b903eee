package service_test

import (
	"errors"
	"math"
	"testing"

	"github.com/fittcha/bodii/internal/service"
)

func TestConvertWeightToKgFromPounds(t *testing.T) {
	t.Parallel()
	out, err := service.ConvertWeightToKg(180, "lb")
	if err != nil {
		t.Fatalf("convert pounds: %v", err)
	}
	if math.Abs(out-81.6466) > 0.01 {
		t.Fatalf("expected ~81.65 kg, got %.4f", out)
	}
}

func TestConvertWeightToKgDefaultsToKilograms(t *testing.T) {
	t.Parallel()
	out, err := service.ConvertWeightToKg(72.5, "")
	if err != nil {
		t.Fatalf("convert with empty unit: %v", err)
	}
	if out != 72.5 {
		t.Fatalf("expected 72.5 kg, got %.4f", out)
	}
}

func TestWeightFromKgRoundTrips(t *testing.T) {
	t.Parallel()
	kg, err := service.ConvertWeightToKg(200, "lbs")
	if err != nil {
		t.Fatalf("convert lbs: %v", err)
	}
	back, err := service.WeightFromKg(kg, "lb")
	if err != nil {
		t.Fatalf("convert back: %v", err)
	}
	if math.Abs(back-200) > 0.0001 {
		t.Fatalf("expected 200 lb after round trip, got %.4f", back)
	}
}

func TestConvertWeightRejectsUnsupportedUnit(t *testing.T) {
	t.Parallel()
	if _, err := service.ConvertWeightToKg(10, "stone"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.WeightFromKg(10, "stone"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConvertWeightRejectsNonPositiveValue(t *testing.T) {
	t.Parallel()
	if _, err := service.ConvertWeightToKg(0, "kg"); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero weight, got %v", err)
	}
}
