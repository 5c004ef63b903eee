package service

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
)

// DayStatus is the daily dashboard: the ledger totals for one day plus the
// energy budget derived from them. RemainingCalories counts exercise burn as
// extra budget: TDEE + calories out - calories in.
type DayStatus struct {
	Date              string             `json:"date"`
	BMR               decimal.Decimal    `json:"bmr"`
	TDEE              decimal.Decimal    `json:"tdee"`
	CaloriesIn        decimal.Decimal    `json:"calories_in"`
	CaloriesOut       decimal.Decimal    `json:"calories_out"`
	NetCalories       decimal.Decimal    `json:"net_calories"`
	RemainingCalories decimal.Decimal    `json:"remaining_calories"`
	CarbsG            decimal.Decimal    `json:"carbs_g"`
	ProteinG          decimal.Decimal    `json:"protein_g"`
	FatG              decimal.Decimal    `json:"fat_g"`
	CarbPct           decimal.Decimal    `json:"carb_pct"`
	ProteinPct        decimal.Decimal    `json:"protein_pct"`
	FatPct            decimal.Decimal    `json:"fat_pct"`
	ExerciseMinutes   int                `json:"exercise_minutes"`
	ExerciseCount     int                `json:"exercise_count"`
	SleepDurationMin  *int               `json:"sleep_duration_min,omitempty"`
	SleepStatus       *model.SleepStatus `json:"sleep_status,omitempty"`
	HasEntries        bool               `json:"has_entries"`
}

// DaySummary reports one day's status. An empty date means today. Days with
// no ledger row still get a metabolic baseline so the budget is visible
// before anything is logged.
func DaySummary(db *sql.DB, profileID int64, date string) (*DayStatus, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	if date == "" {
		date = dayKeyOf(time.Now())
	}
	if err := validateDayKey(date); err != nil {
		return nil, err
	}

	status := &DayStatus{Date: date}
	led, err := NewLedgerStore(db).LoadLedger(profileID, date)
	if err != nil {
		return nil, err
	}
	if led == nil {
		snap, err := MetabolicsAsOf(db, profileID, date)
		if err != nil {
			return nil, err
		}
		status.BMR = snap.BMR
		status.TDEE = snap.TDEE
		status.NetCalories = snap.TDEE.Neg()
		status.RemainingCalories = snap.TDEE
		return status, nil
	}

	status.HasEntries = true
	status.BMR = led.BMR
	status.TDEE = led.TDEE
	status.CaloriesIn = led.TotalCaloriesIn
	status.CaloriesOut = led.TotalCaloriesOut
	status.NetCalories = led.NetCalories
	status.RemainingCalories = led.TDEE.Add(led.TotalCaloriesOut).Sub(led.TotalCaloriesIn)
	status.CarbsG = led.TotalCarbsG
	status.ProteinG = led.TotalProteinG
	status.FatG = led.TotalFatG
	status.CarbPct, status.ProteinPct, status.FatPct = MacroEnergyShares(led.TotalCarbsG, led.TotalProteinG, led.TotalFatG)
	status.ExerciseMinutes = led.ExerciseMinutes
	status.ExerciseCount = led.ExerciseCount
	status.SleepDurationMin = led.SleepDurationMin
	status.SleepStatus = led.SleepStatus
	return status, nil
}
