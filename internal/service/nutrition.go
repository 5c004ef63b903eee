package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/quantity"
)

// Energy density per gram of each core macro.
var (
	carbKcalPerG    = decimal.NewFromInt(4)
	proteinKcalPerG = decimal.NewFromInt(4)
	fatKcalPerG     = decimal.NewFromInt(9)
)

// CalculatedNutrition is what one meal entry contributes: per-quantity
// nutrients plus the macro energy split.
type CalculatedNutrition struct {
	Calories int
	CarbsG   decimal.Decimal
	ProteinG decimal.Decimal
	FatG     decimal.Decimal
	FiberG   *decimal.Decimal
	SugarG   *decimal.Decimal
	SodiumMg *decimal.Decimal

	CarbRatio    decimal.Decimal
	ProteinRatio decimal.Decimal
	FatRatio     decimal.Decimal
}

// CalculateNutrition scales a food's per-serving nutrients to a quantity.
// Serving quantities multiply directly; gram quantities divide by the food's
// serving size first. A food with no usable serving size yields a zero
// multiplier (and all-zero nutrition) instead of a division error.
func CalculateNutrition(food model.Food, qty float64, unit model.QuantityUnit) (CalculatedNutrition, error) {
	if qty <= 0 {
		return CalculatedNutrition{}, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidInput)
	}

	var mult decimal.Decimal
	switch unit {
	case model.UnitServing:
		mult = decimal.NewFromFloat(qty)
	case model.UnitGrams:
		if food.ServingSizeG <= 0 {
			mult = decimal.Zero
		} else {
			mult = decimal.NewFromFloat(qty).Div(decimal.NewFromFloat(food.ServingSizeG))
		}
	default:
		return CalculatedNutrition{}, fmt.Errorf("%w: unknown quantity unit %q", ErrInvalidInput, unit)
	}

	out := CalculatedNutrition{
		Calories: quantity.RoundKcal(quantity.FromInt(food.Calories).Mul(mult)),
		CarbsG:   quantity.RoundTenth(quantity.FromFloat(food.CarbsG).Mul(mult)),
		ProteinG: quantity.RoundTenth(quantity.FromFloat(food.ProteinG).Mul(mult)),
		FatG:     quantity.RoundTenth(quantity.FromFloat(food.FatG).Mul(mult)),
	}
	if food.FiberG != nil {
		v := quantity.RoundTenth(quantity.FromFloat(*food.FiberG).Mul(mult))
		out.FiberG = &v
	}
	if food.SugarG != nil {
		v := quantity.RoundTenth(quantity.FromFloat(*food.SugarG).Mul(mult))
		out.SugarG = &v
	}
	if food.SodiumMg != nil {
		v := quantity.RoundTenth(quantity.FromFloat(*food.SodiumMg).Mul(mult))
		out.SodiumMg = &v
	}

	out.CarbRatio, out.ProteinRatio, out.FatRatio = MacroEnergyShares(out.CarbsG, out.ProteinG, out.FatG)
	return out, nil
}

// MacroEnergyShares splits total macro energy into carb/protein/fat
// percentages using the 4/4/9 kcal-per-gram constants. All three shares are 0
// when the total is 0.
func MacroEnergyShares(carbsG, proteinG, fatG decimal.Decimal) (carb, protein, fat decimal.Decimal) {
	carbCal := carbsG.Mul(carbKcalPerG)
	proteinCal := proteinG.Mul(proteinKcalPerG)
	fatCal := fatG.Mul(fatKcalPerG)
	total := carbCal.Add(proteinCal).Add(fatCal)
	return quantity.PercentShare(carbCal, total),
		quantity.PercentShare(proteinCal, total),
		quantity.PercentShare(fatCal, total)
}
