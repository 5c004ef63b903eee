package service

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/quantity"
)

type TrendDay struct {
	Date             string             `json:"date"`
	CaloriesIn       decimal.Decimal    `json:"calories_in"`
	CaloriesOut      decimal.Decimal    `json:"calories_out"`
	NetCalories      decimal.Decimal    `json:"net_calories"`
	TDEE             decimal.Decimal    `json:"tdee"`
	ExerciseMinutes  int                `json:"exercise_minutes"`
	SleepDurationMin *int               `json:"sleep_duration_min,omitempty"`
	SleepStatus      *model.SleepStatus `json:"sleep_status,omitempty"`
}

type WeightPoint struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
}

type SleepBreakdown struct {
	TrackedDays int `json:"tracked_days"`
	GoodDays    int `json:"good_days"`
	FairDays    int `json:"fair_days"`
	PoorDays    int `json:"poor_days"`
	AverageMin  int `json:"average_min"`
}

type TrendReport struct {
	FromDate               string          `json:"from_date"`
	ToDate                 string          `json:"to_date"`
	Days                   []TrendDay      `json:"days"`
	ActiveDays             int             `json:"active_days"`
	TotalCaloriesIn        decimal.Decimal `json:"total_calories_in"`
	TotalCaloriesOut       decimal.Decimal `json:"total_calories_out"`
	CumulativeNet          decimal.Decimal `json:"cumulative_net"`
	AverageCaloriesInDay   decimal.Decimal `json:"avg_calories_in_per_day"`
	AverageNetDay          decimal.Decimal `json:"avg_net_per_day"`
	TotalExerciseMinutes   int             `json:"total_exercise_minutes"`
	AverageExerciseMinutes int             `json:"avg_exercise_minutes"`
	HighestNetDay          *TrendDay       `json:"highest_net_day,omitempty"`
	LowestNetDay           *TrendDay       `json:"lowest_net_day,omitempty"`
	Sleep                  SleepBreakdown  `json:"sleep"`
	Weights                []WeightPoint   `json:"weights"`
	WeightChangeKg         *float64        `json:"weight_change_kg,omitempty"`
}

// TrendRange aggregates the per-day ledgers between two dates (inclusive).
// Only days with a ledger row count toward averages.
func TrendRange(db *sql.DB, profileID int64, from, to string) (*TrendReport, error) {
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	if err := validateDayKey(from); err != nil {
		return nil, err
	}
	if err := validateDayKey(to); err != nil {
		return nil, err
	}
	if strings.Compare(from, to) > 0 {
		return nil, fmt.Errorf("%w: from date must not be after to date", ErrInvalidInput)
	}

	report := &TrendReport{FromDate: from, ToDate: to}
	ledgers, err := ListLedgers(db, profileID, from, to)
	if err != nil {
		return nil, err
	}

	report.Days = make([]TrendDay, 0, len(ledgers))
	for i := range ledgers {
		led := ledgers[i]
		day := TrendDay{
			Date:             led.Date,
			CaloriesIn:       led.TotalCaloriesIn,
			CaloriesOut:      led.TotalCaloriesOut,
			NetCalories:      led.NetCalories,
			TDEE:             led.TDEE,
			ExerciseMinutes:  led.ExerciseMinutes,
			SleepDurationMin: led.SleepDurationMin,
			SleepStatus:      led.SleepStatus,
		}
		report.Days = append(report.Days, day)

		report.TotalCaloriesIn = report.TotalCaloriesIn.Add(led.TotalCaloriesIn)
		report.TotalCaloriesOut = report.TotalCaloriesOut.Add(led.TotalCaloriesOut)
		report.CumulativeNet = report.CumulativeNet.Add(led.NetCalories)
		report.TotalExerciseMinutes += led.ExerciseMinutes

		if led.SleepDurationMin != nil {
			report.Sleep.TrackedDays++
			report.Sleep.AverageMin += *led.SleepDurationMin
			if led.SleepStatus != nil {
				switch *led.SleepStatus {
				case model.SleepStatusGood:
					report.Sleep.GoodDays++
				case model.SleepStatusFair:
					report.Sleep.FairDays++
				case model.SleepStatusPoor:
					report.Sleep.PoorDays++
				}
			}
		}
	}

	report.ActiveDays = len(report.Days)
	if report.ActiveDays > 0 {
		div := decimal.NewFromInt(int64(report.ActiveDays))
		report.AverageCaloriesInDay = quantity.RoundTenth(report.TotalCaloriesIn.Div(div))
		report.AverageNetDay = quantity.RoundTenth(report.CumulativeNet.Div(div))
		report.AverageExerciseMinutes = report.TotalExerciseMinutes / report.ActiveDays
		report.HighestNetDay, report.LowestNetDay = extremeNetDays(report.Days)
	}
	if report.Sleep.TrackedDays > 0 {
		report.Sleep.AverageMin /= report.Sleep.TrackedDays
	}

	weights, err := loadWeightSeries(db, profileID, from, to)
	if err != nil {
		return nil, err
	}
	report.Weights = weights
	if len(weights) >= 2 {
		change := weights[len(weights)-1].WeightKg - weights[0].WeightKg
		report.WeightChangeKg = &change
	}
	return report, nil
}

func loadWeightSeries(db *sql.DB, profileID int64, from, to string) ([]WeightPoint, error) {
	start, err := parseDateStart(from)
	if err != nil {
		return nil, err
	}
	end, err := parseDateEndExclusive(to)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`
SELECT substr(measured_at, 1, 10) AS day, weight_kg
FROM body_measurements
WHERE profile_id = ? AND measured_at >= ? AND measured_at < ?
ORDER BY measured_at ASC
`, profileID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query weight series: %w", err)
	}
	defer rows.Close()

	points := make([]WeightPoint, 0)
	for rows.Next() {
		var p WeightPoint
		if err := rows.Scan(&p.Date, &p.WeightKg); err != nil {
			return nil, fmt.Errorf("scan weight point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weight series: %w", err)
	}
	return points, nil
}

func extremeNetDays(days []TrendDay) (*TrendDay, *TrendDay) {
	if len(days) == 0 {
		return nil, nil
	}
	copied := make([]TrendDay, len(days))
	copy(copied, days)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].NetCalories.LessThan(copied[j].NetCalories)
	})
	low := copied[0]
	high := copied[len(copied)-1]
	return &high, &low
}

// LastNDaysRange returns the inclusive day-key range ending today.
func LastNDaysRange(n int) (string, string) {
	if n < 1 {
		n = 1
	}
	today := beginningOfDay(time.Now())
	return today.AddDate(0, 0, -(n - 1)).Format(dayKeyLayout), today.Format(dayKeyLayout)
}
