package service_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/service"
)

func TestComputeBMRStandardWeight(t *testing.T) {
	t.Parallel()

	res, err := service.ComputeBMR(service.BMRInput{
		WeightKg: decimal.NewFromInt(70),
		HeightCm: decimal.NewFromInt(175),
		AgeYears: 30,
		Sex:      model.SexMale,
	})
	if err != nil {
		t.Fatalf("compute bmr: %v", err)
	}
	if !res.BMR.Equal(decimal.RequireFromString("1648.75")) {
		t.Errorf("bmr = %s, want 1648.75", res.BMR)
	}
	if res.Formula != service.FormulaStandardWeight {
		t.Errorf("formula = %s, want %s", res.Formula, service.FormulaStandardWeight)
	}
}

func TestComputeBMRFemaleOffset(t *testing.T) {
	t.Parallel()

	res, err := service.ComputeBMR(service.BMRInput{
		WeightKg: decimal.NewFromInt(60),
		HeightCm: decimal.NewFromInt(165),
		AgeYears: 28,
		Sex:      model.SexFemale,
	})
	if err != nil {
		t.Fatalf("compute bmr: %v", err)
	}
	// 600 + 1031.25 - 140 - 161
	if !res.BMR.Equal(decimal.RequireFromString("1330.25")) {
		t.Errorf("bmr = %s, want 1330.25", res.BMR)
	}
}

func TestComputeBMRLeanMass(t *testing.T) {
	t.Parallel()

	bf := decimal.NewFromInt(18)
	res, err := service.ComputeBMR(service.BMRInput{
		WeightKg:   decimal.NewFromInt(70),
		HeightCm:   decimal.NewFromInt(175),
		AgeYears:   30,
		Sex:        model.SexMale,
		BodyFatPct: &bf,
	})
	if err != nil {
		t.Fatalf("compute bmr: %v", err)
	}
	if !res.BMR.Equal(decimal.RequireFromString("1609.84")) {
		t.Errorf("bmr = %s, want 1609.84", res.BMR)
	}
	if res.Formula != service.FormulaLeanMass {
		t.Errorf("formula = %s, want %s", res.Formula, service.FormulaLeanMass)
	}
}

func TestComputeBMRInvalidInput(t *testing.T) {
	t.Parallel()

	base := service.BMRInput{
		WeightKg: decimal.NewFromInt(70),
		HeightCm: decimal.NewFromInt(175),
		AgeYears: 30,
		Sex:      model.SexMale,
	}

	zeroWeight := base
	zeroWeight.WeightKg = decimal.Zero

	negHeight := base
	negHeight.HeightCm = decimal.NewFromInt(-1)

	zeroAge := base
	zeroAge.AgeYears = 0

	badSex := base
	badSex.Sex = model.Sex("other")

	lowBF := base
	low := decimal.RequireFromString("0.5")
	lowBF.BodyFatPct = &low

	highBF := base
	high := decimal.NewFromInt(61)
	highBF.BodyFatPct = &high

	for name, in := range map[string]service.BMRInput{
		"zero weight":     zeroWeight,
		"negative height": negHeight,
		"zero age":        zeroAge,
		"unknown sex":     badSex,
		"body fat low":    lowBF,
		"body fat high":   highBF,
	} {
		if _, err := service.ComputeBMR(in); !errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestComputeBMROutOfRange(t *testing.T) {
	t.Parallel()

	_, err := service.ComputeBMR(service.BMRInput{
		WeightKg: decimal.NewFromInt(2),
		HeightCm: decimal.NewFromInt(30),
		AgeYears: 1,
		Sex:      model.SexMale,
	})
	if !errors.Is(err, service.ErrCalculationOutOfRange) {
		t.Errorf("tiny inputs: err = %v, want ErrCalculationOutOfRange", err)
	}

	bf := decimal.NewFromInt(1)
	_, err = service.ComputeBMR(service.BMRInput{
		WeightKg:   decimal.NewFromInt(500),
		HeightCm:   decimal.NewFromInt(175),
		AgeYears:   30,
		Sex:        model.SexMale,
		BodyFatPct: &bf,
	})
	if !errors.Is(err, service.ErrCalculationOutOfRange) {
		t.Errorf("huge lean mass: err = %v, want ErrCalculationOutOfRange", err)
	}
}

func TestComputeTDEE(t *testing.T) {
	t.Parallel()

	mult, err := service.ActivityMultiplier(model.ActivityModerate)
	if err != nil {
		t.Fatalf("activity multiplier: %v", err)
	}
	tdee, err := service.ComputeTDEE(decimal.RequireFromString("1648.75"), mult)
	if err != nil {
		t.Fatalf("compute tdee: %v", err)
	}
	if !tdee.Equal(decimal.RequireFromString("2555.5625")) {
		t.Errorf("tdee = %s, want 2555.5625", tdee)
	}

	if _, err := service.ComputeTDEE(decimal.Zero, mult); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("zero bmr: err = %v, want ErrInvalidInput", err)
	}

	low, err := service.ActivityMultiplier(model.ActivitySedentary)
	if err != nil {
		t.Fatalf("activity multiplier: %v", err)
	}
	if _, err := service.ComputeTDEE(decimal.NewFromInt(300), low); !errors.Is(err, service.ErrCalculationOutOfRange) {
		t.Errorf("tdee below floor: err = %v, want ErrCalculationOutOfRange", err)
	}
}

func TestComputeTDEEIncreasesWithActivity(t *testing.T) {
	t.Parallel()

	levels := []model.ActivityLevel{
		model.ActivitySedentary,
		model.ActivityLight,
		model.ActivityModerate,
		model.ActivityActive,
		model.ActivityVeryActive,
	}
	bmr := decimal.RequireFromString("1648.75")
	prev := decimal.Zero
	for _, lvl := range levels {
		mult, err := service.ActivityMultiplier(lvl)
		if err != nil {
			t.Fatalf("activity multiplier %s: %v", lvl, err)
		}
		tdee, err := service.ComputeTDEE(bmr, mult)
		if err != nil {
			t.Fatalf("compute tdee %s: %v", lvl, err)
		}
		if !tdee.GreaterThan(prev) {
			t.Errorf("tdee for %s = %s, want > %s", lvl, tdee, prev)
		}
		prev = tdee
	}
}

func TestActivityMultiplierUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := service.ActivityMultiplier(model.ActivityLevel("extreme")); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
