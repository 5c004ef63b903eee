package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
)

// Formula names reported by ComputeBMR.
const (
	FormulaLeanMass       = "lean_mass"
	FormulaStandardWeight = "standard_weight"
)

var activityMultipliers = map[model.ActivityLevel]decimal.Decimal{
	model.ActivitySedentary:  decimal.RequireFromString("1.2"),
	model.ActivityLight:      decimal.RequireFromString("1.375"),
	model.ActivityModerate:   decimal.RequireFromString("1.55"),
	model.ActivityActive:     decimal.RequireFromString("1.725"),
	model.ActivityVeryActive: decimal.RequireFromString("1.9"),
}

// Sanity bands for computed values. A result outside its band is reported,
// never clamped.
var (
	bmrFloor  = decimal.NewFromInt(300)
	bmrCeil   = decimal.NewFromInt(5000)
	tdeeFloor = decimal.NewFromInt(400)
	tdeeCeil  = decimal.NewFromInt(10000)
)

var (
	decOne     = decimal.NewFromInt(1)
	decSixty   = decimal.NewFromInt(60)
	decHundred = decimal.NewFromInt(100)

	leanMassBase   = decimal.NewFromInt(370)
	leanMassFactor = decimal.RequireFromString("21.6")
	weightFactor   = decimal.NewFromInt(10)
	heightFactor   = decimal.RequireFromString("6.25")
	ageFactor      = decimal.NewFromInt(5)
	maleOffset     = decimal.NewFromInt(5)
	femaleOffset   = decimal.NewFromInt(-161)
)

type BMRInput struct {
	WeightKg   decimal.Decimal
	HeightCm   decimal.Decimal
	AgeYears   int
	Sex        model.Sex
	BodyFatPct *decimal.Decimal
}

type BMRResult struct {
	BMR     decimal.Decimal
	Formula string
}

// ComputeBMR picks the formula deterministically: the lean-mass formula when
// a body-fat percentage is supplied, the standard-weight formula otherwise.
func ComputeBMR(in BMRInput) (BMRResult, error) {
	if in.WeightKg.Sign() <= 0 {
		return BMRResult{}, fmt.Errorf("%w: weight must be greater than 0", ErrInvalidInput)
	}
	if in.HeightCm.Sign() <= 0 {
		return BMRResult{}, fmt.Errorf("%w: height must be greater than 0", ErrInvalidInput)
	}
	if in.AgeYears <= 0 {
		return BMRResult{}, fmt.Errorf("%w: age must be greater than 0", ErrInvalidInput)
	}

	if in.BodyFatPct != nil {
		bf := *in.BodyFatPct
		if bf.LessThan(decOne) || bf.GreaterThan(decSixty) {
			return BMRResult{}, fmt.Errorf("%w: body fat percent must be within [1, 60]", ErrInvalidInput)
		}
		leanMass := in.WeightKg.Mul(decOne.Sub(bf.Div(decHundred)))
		bmr := leanMassBase.Add(leanMassFactor.Mul(leanMass))
		if err := checkBMRRange(bmr); err != nil {
			return BMRResult{}, err
		}
		return BMRResult{BMR: bmr, Formula: FormulaLeanMass}, nil
	}

	var offset decimal.Decimal
	switch in.Sex {
	case model.SexMale:
		offset = maleOffset
	case model.SexFemale:
		offset = femaleOffset
	default:
		return BMRResult{}, fmt.Errorf("%w: sex must be male or female", ErrInvalidInput)
	}
	bmr := weightFactor.Mul(in.WeightKg).
		Add(heightFactor.Mul(in.HeightCm)).
		Sub(ageFactor.Mul(decimal.NewFromInt(int64(in.AgeYears)))).
		Add(offset)
	if err := checkBMRRange(bmr); err != nil {
		return BMRResult{}, err
	}
	return BMRResult{BMR: bmr, Formula: FormulaStandardWeight}, nil
}

func checkBMRRange(bmr decimal.Decimal) error {
	if bmr.LessThan(bmrFloor) || bmr.GreaterThan(bmrCeil) {
		return fmt.Errorf("%w: bmr %s outside [300, 5000] kcal/day", ErrCalculationOutOfRange, bmr)
	}
	return nil
}

// ComputeTDEE scales a BMR by an activity multiplier.
func ComputeTDEE(bmr, multiplier decimal.Decimal) (decimal.Decimal, error) {
	if bmr.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: bmr must be greater than 0", ErrInvalidInput)
	}
	if multiplier.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: activity multiplier must be greater than 0", ErrInvalidInput)
	}
	tdee := bmr.Mul(multiplier)
	if tdee.LessThan(tdeeFloor) || tdee.GreaterThan(tdeeCeil) {
		return decimal.Zero, fmt.Errorf("%w: tdee %s outside [400, 10000] kcal/day", ErrCalculationOutOfRange, tdee)
	}
	return tdee, nil
}

// ActivityMultiplier returns the fixed multiplier for one of the five
// activity tiers.
func ActivityMultiplier(level model.ActivityLevel) (decimal.Decimal, error) {
	m, ok := activityMultipliers[level]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, level)
	}
	return m, nil
}

func ageYears(birth, on time.Time) int {
	years := on.Year() - birth.Year()
	anniversary := time.Date(on.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, on.Location())
	if on.Before(anniversary) {
		years--
	}
	return years
}

// MetabolicSnapshot is a profile's derived metabolic state for one day.
// Complete is false when the profile or its measurements cannot produce a
// BMR yet; all other fields are zero in that case.
type MetabolicSnapshot struct {
	BMR      decimal.Decimal
	TDEE     decimal.Decimal
	Formula  string
	Complete bool
}

// MetabolicsAsOf derives the snapshot for a day from the profile and the
// latest measurement taken on or before it, so replaying history sees the
// body state of that day. Missing profile fields or measurements yield an
// incomplete snapshot rather than an error; genuinely invalid data still
// errors.
func MetabolicsAsOf(db *sql.DB, profileID int64, date string) (MetabolicSnapshot, error) {
	p, err := ProfileByID(db, profileID)
	if err != nil {
		return MetabolicSnapshot{}, err
	}
	m, err := MeasurementAsOf(db, profileID, date)
	if errors.Is(err, ErrNotFound) {
		return MetabolicSnapshot{}, nil
	}
	if err != nil {
		return MetabolicSnapshot{}, err
	}
	if p.Sex == nil || p.BirthDate == nil || p.HeightCm == nil || p.ActivityLevel == nil {
		return MetabolicSnapshot{}, nil
	}

	on, err := time.ParseInLocation(dayKeyLayout, date, time.Local)
	if err != nil {
		return MetabolicSnapshot{}, fmt.Errorf("%w: invalid day %q, expected YYYY-MM-DD", ErrInvalidInput, date)
	}
	in := BMRInput{
		WeightKg: decimal.NewFromFloat(m.WeightKg),
		HeightCm: decimal.NewFromFloat(*p.HeightCm),
		AgeYears: ageYears(*p.BirthDate, on),
		Sex:      *p.Sex,
	}
	if m.BodyFatPct != nil {
		bf := decimal.NewFromFloat(*m.BodyFatPct)
		in.BodyFatPct = &bf
	}
	res, err := ComputeBMR(in)
	if err != nil {
		return MetabolicSnapshot{}, err
	}
	mult, err := ActivityMultiplier(*p.ActivityLevel)
	if err != nil {
		return MetabolicSnapshot{}, err
	}
	tdee, err := ComputeTDEE(res.BMR, mult)
	if err != nil {
		return MetabolicSnapshot{}, err
	}
	return MetabolicSnapshot{BMR: res.BMR, TDEE: tdee, Formula: res.Formula, Complete: true}, nil
}

// CurrentMetabolics is MetabolicsAsOf for today, as the event services seed
// new ledgers with it.
func CurrentMetabolics(db *sql.DB, profileID int64) (decimal.Decimal, decimal.Decimal, error) {
	snap, err := MetabolicsAsOf(db, profileID, dayKeyOf(time.Now()))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return snap.BMR, snap.TDEE, nil
}
