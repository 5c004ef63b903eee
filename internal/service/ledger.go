package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/quantity"
)

// The daily ledger is a state machine per (profile, day): absent until the
// first mutating call, present afterwards. Every operation here is
// upsert-shaped, so exercise, sleep and nutrition can each be the first event
// of a day without a separate ensure step.

func newLedger(profileID int64, day string) *model.DailyLedger {
	now := time.Now().UTC()
	return &model.DailyLedger{
		ProfileID: profileID,
		Date:      day,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetOrCreateLedger returns the ledger for the day, creating it with the
// supplied bmr/tdee when absent. When an existing ledger still carries a zero
// TDEE and a positive one is supplied now, the metabolic fields are
// backfilled and netCalories recomputed; events may legitimately predate the
// profile data needed to compute them.
func GetOrCreateLedger(store LedgerStore, profileID int64, day string, bmr, tdee decimal.Decimal) (*model.DailyLedger, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	if err := validateDayKey(day); err != nil {
		return nil, err
	}
	if bmr.Sign() < 0 || tdee.Sign() < 0 {
		return nil, fmt.Errorf("%w: bmr and tdee must be >= 0", ErrInvalidInput)
	}

	led, err := store.LoadLedger(profileID, day)
	if err != nil {
		return nil, err
	}
	if led == nil {
		led = newLedger(profileID, day)
		led.BMR = bmr
		led.TDEE = tdee
		led.NetCalories = led.TotalCaloriesIn.Sub(led.TDEE)
		if err := store.SaveLedger(led); err != nil {
			return nil, err
		}
		return led, nil
	}

	if led.TDEE.IsZero() && tdee.Sign() > 0 {
		led.BMR = bmr
		led.TDEE = tdee
		led.NetCalories = led.TotalCaloriesIn.Sub(led.TDEE)
		led.UpdatedAt = time.Now().UTC()
		if err := store.SaveLedger(led); err != nil {
			return nil, err
		}
	}
	return led, nil
}

// ApplyExerciseDelta adds signed deltas to the exercise totals, clamping each
// at zero. Add, remove and edit all go through here: an edit is the old
// effect negated plus the new effect, applied as one call.
func ApplyExerciseDelta(store LedgerStore, profileID int64, day string, caloriesDelta decimal.Decimal, minutesDelta, countDelta int) (*model.DailyLedger, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	if err := validateDayKey(day); err != nil {
		return nil, err
	}

	led, err := store.LoadLedger(profileID, day)
	if err != nil {
		return nil, err
	}
	if led == nil {
		led = newLedger(profileID, day)
	}
	led.TotalCaloriesOut = quantity.ClampNonNegative(led.TotalCaloriesOut.Add(caloriesDelta))
	led.ExerciseMinutes = clampInt(led.ExerciseMinutes + minutesDelta)
	led.ExerciseCount = clampInt(led.ExerciseCount + countDelta)
	led.UpdatedAt = time.Now().UTC()
	if err := store.SaveLedger(led); err != nil {
		return nil, err
	}
	return led, nil
}

// UpsertLedgerSleep sets (both non-nil) or clears (both nil) the sleep fields
// for a day, lazily creating the ledger when sleep is the first event.
func UpsertLedgerSleep(store LedgerStore, profileID int64, day string, durationMin *int, status *model.SleepStatus) (*model.DailyLedger, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	if err := validateDayKey(day); err != nil {
		return nil, err
	}
	if durationMin != nil {
		if err := validatePositiveInt("sleep duration", *durationMin); err != nil {
			return nil, err
		}
	}
	if status != nil {
		if err := validateSleepStatus(*status); err != nil {
			return nil, err
		}
	}

	led, err := store.LoadLedger(profileID, day)
	if err != nil {
		return nil, err
	}
	if led == nil {
		led = newLedger(profileID, day)
	}
	if durationMin != nil {
		v := *durationMin
		led.SleepDurationMin = &v
	} else {
		led.SleepDurationMin = nil
	}
	if status != nil {
		v := *status
		led.SleepStatus = &v
	} else {
		led.SleepStatus = nil
	}
	led.UpdatedAt = time.Now().UTC()
	if err := store.SaveLedger(led); err != nil {
		return nil, err
	}
	return led, nil
}

// MoveLedgerSleep relocates a day's sleep fields after a boundary or edit
// changed its attribution: clear the old day, set the new one. When both days
// are the same the clear step is skipped so the set is not washed out.
func MoveLedgerSleep(store LedgerStore, profileID int64, oldDay, newDay string, durationMin int, status model.SleepStatus) error {
	if err := validateDayKey(oldDay); err != nil {
		return err
	}
	if oldDay != newDay {
		if _, err := UpsertLedgerSleep(store, profileID, oldDay, nil, nil); err != nil {
			return err
		}
	}
	_, err := UpsertLedgerSleep(store, profileID, newDay, &durationMin, &status)
	return err
}

// ApplyNutritionContribution adds signed nutrition deltas to the intake
// totals, clamps them at zero, and recomputes netCalories as
// totalCaloriesIn - tdee.
func ApplyNutritionContribution(store LedgerStore, profileID int64, day string, caloriesDelta, carbsDelta, proteinDelta, fatDelta decimal.Decimal) (*model.DailyLedger, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	if err := validateDayKey(day); err != nil {
		return nil, err
	}

	led, err := store.LoadLedger(profileID, day)
	if err != nil {
		return nil, err
	}
	if led == nil {
		led = newLedger(profileID, day)
	}
	led.TotalCaloriesIn = quantity.ClampNonNegative(led.TotalCaloriesIn.Add(caloriesDelta))
	led.TotalCarbsG = quantity.ClampNonNegative(led.TotalCarbsG.Add(carbsDelta))
	led.TotalProteinG = quantity.ClampNonNegative(led.TotalProteinG.Add(proteinDelta))
	led.TotalFatG = quantity.ClampNonNegative(led.TotalFatG.Add(fatDelta))
	led.NetCalories = led.TotalCaloriesIn.Sub(led.TDEE)
	led.UpdatedAt = time.Now().UTC()
	if err := store.SaveLedger(led); err != nil {
		return nil, err
	}
	return led, nil
}

// ResetLedgers drops every ledger for the profile. Event logs are untouched;
// RebuildLedgers replays them.
func ResetLedgers(store LedgerStore, profileID int64) error {
	if err := validateProfileID(profileID); err != nil {
		return err
	}
	return store.DeleteAllLedgers(profileID)
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
