package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

type SleepStatus string

const (
	SleepStatusGood SleepStatus = "good"
	SleepStatusFair SleepStatus = "fair"
	SleepStatusPoor SleepStatus = "poor"
)

type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
)

// QuantityUnit is how a meal quantity is expressed against a food's
// per-serving profile: a serving count or a gram weight.
type QuantityUnit string

const (
	UnitServing QuantityUnit = "serving"
	UnitGrams   QuantityUnit = "g"
)

type Profile struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Sex           *Sex           `json:"sex,omitempty"`
	BirthDate     *time.Time     `json:"birth_date,omitempty"`
	HeightCm      *float64       `json:"height_cm,omitempty"`
	ActivityLevel *ActivityLevel `json:"activity_level,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type BodyMeasurement struct {
	ID           int64     `json:"id"`
	ProfileID    int64     `json:"profile_id"`
	MeasuredAt   time.Time `json:"measured_at"`
	WeightKg     float64   `json:"weight_kg"`
	BodyFatPct   *float64  `json:"body_fat_pct,omitempty"`
	MuscleMassKg *float64  `json:"muscle_mass_kg,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DailyLedger is the running aggregate for one (profile, calendar day).
// Decimal fields are exact quantities; Revision is bumped on every save and
// checked by the store to detect concurrent writers.
type DailyLedger struct {
	ID               int64           `json:"id"`
	ProfileID        int64           `json:"profile_id"`
	Date             string          `json:"date"`
	BMR              decimal.Decimal `json:"bmr"`
	TDEE             decimal.Decimal `json:"tdee"`
	NetCalories      decimal.Decimal `json:"net_calories"`
	TotalCaloriesIn  decimal.Decimal `json:"total_calories_in"`
	TotalCaloriesOut decimal.Decimal `json:"total_calories_out"`
	TotalCarbsG      decimal.Decimal `json:"total_carbs_g"`
	TotalProteinG    decimal.Decimal `json:"total_protein_g"`
	TotalFatG        decimal.Decimal `json:"total_fat_g"`
	ExerciseMinutes  int             `json:"exercise_minutes"`
	ExerciseCount    int             `json:"exercise_count"`
	SleepDurationMin *int            `json:"sleep_duration_min,omitempty"`
	SleepStatus      *SleepStatus    `json:"sleep_status,omitempty"`
	Revision         int64           `json:"revision"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type ExerciseLog struct {
	ID             int64     `json:"id"`
	ProfileID      int64     `json:"profile_id"`
	ExerciseType   string    `json:"exercise_type"`
	Intensity      Intensity `json:"intensity,omitempty"`
	CaloriesBurned int       `json:"calories_burned"`
	DurationMin    int       `json:"duration_min"`
	PerformedAt    time.Time `json:"performed_at"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SleepLog keeps both the wall-clock time the sleep ended and the logical day
// it was attributed to after the boundary rule. One row per (profile, day key).
type SleepLog struct {
	ID          int64       `json:"id"`
	ProfileID   int64       `json:"profile_id"`
	SleptAt     time.Time   `json:"slept_at"`
	DayKey      string      `json:"day_key"`
	DurationMin int         `json:"duration_min"`
	Status      SleepStatus `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type MealEntry struct {
	ID           int64        `json:"id"`
	ProfileID    int64        `json:"profile_id"`
	Name         string       `json:"name"`
	CategoryID   int64        `json:"category_id"`
	Category     string       `json:"category"`
	FoodID       *int64       `json:"food_id,omitempty"`
	Quantity     float64      `json:"quantity"`
	QuantityUnit QuantityUnit `json:"quantity_unit"`
	Calories     int          `json:"calories"`
	CarbsG       float64      `json:"carbs_g"`
	ProteinG     float64      `json:"protein_g"`
	FatG         float64      `json:"fat_g"`
	ConsumedAt   time.Time    `json:"consumed_at"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type MealCategory struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Food is a per-serving nutrient profile. ServingSizeG is the gram weight of
// one serving; 0 means unknown, in which case gram-based quantities cannot be
// resolved against it.
type Food struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	NameNorm     string     `json:"name_norm"`
	Brand        string     `json:"brand,omitempty"`
	Calories     int        `json:"calories"`
	CarbsG       float64    `json:"carbs_g"`
	ProteinG     float64    `json:"protein_g"`
	FatG         float64    `json:"fat_g"`
	FiberG       *float64   `json:"fiber_g,omitempty"`
	SugarG       *float64   `json:"sugar_g,omitempty"`
	SodiumMg     *float64   `json:"sodium_mg,omitempty"`
	ServingSizeG float64    `json:"serving_size_g"`
	ServingUnit  string     `json:"serving_unit"`
	UsageCount   int        `json:"usage_count"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ImportBatch struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Kind       string    `json:"kind"`
	ItemCount  int       `json:"item_count"`
	ImportedAt time.Time `json:"imported_at"`
}
