package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/quantity"
)

// MealEntryInput logs food intake either free-text (calories and macros given
// directly) or from the catalog (Food set to an id or name, nutrition
// calculated from the stored per-serving values and the quantity).
type MealEntryInput struct {
	ProfileID    int64
	Name         string
	Category     string
	Food         string
	Quantity     float64
	QuantityUnit string
	Calories     int
	CarbsG       float64
	ProteinG     float64
	FatG         float64
	ConsumedAt   time.Time
	Notes        string
}

type ListMealsFilter struct {
	ProfileID int64
	Date      string
	FromDate  string
	ToDate    string
	Category  string
	Limit     int
}

type UpdateMealInput struct {
	MealEntryInput
	ID int64
}

func CreateMealEntry(db *sql.DB, in MealEntryInput) (int64, error) {
	normalized, foodID, err := normalizeMealInput(db, in, false)
	if err != nil {
		return 0, err
	}
	categoryID, err := categoryIDByName(db, normalized.Category)
	if err != nil {
		return 0, err
	}

	res, err := db.Exec(`
INSERT INTO meal_entries(profile_id, name, category_id, food_id, quantity, quantity_unit, calories, carbs_g, protein_g, fat_g, consumed_at, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, normalized.ProfileID, normalized.Name, categoryID, foodID, normalized.Quantity, normalized.QuantityUnit,
		normalized.Calories, normalized.CarbsG, normalized.ProteinG, normalized.FatG,
		normalized.ConsumedAt.Format(time.RFC3339), nullableString(normalized.Notes))
	if err != nil {
		return 0, fmt.Errorf("add meal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve meal entry id: %w", err)
	}
	if foodID != nil {
		if err := touchFoodUsage(db, *foodID); err != nil {
			return 0, err
		}
	}

	day := dayKeyOf(normalized.ConsumedAt)
	bmr, tdee, err := CurrentMetabolics(db, normalized.ProfileID)
	if err != nil {
		return 0, err
	}
	store := NewLedgerStore(db)
	if _, err := GetOrCreateLedger(store, normalized.ProfileID, day, bmr, tdee); err != nil {
		return 0, err
	}
	if _, err := ApplyNutritionContribution(store, normalized.ProfileID, day,
		decimal.NewFromInt(int64(normalized.Calories)),
		quantity.FromFloat(normalized.CarbsG),
		quantity.FromFloat(normalized.ProteinG),
		quantity.FromFloat(normalized.FatG)); err != nil {
		return 0, err
	}
	return id, nil
}

func MealEntryByID(db *sql.DB, profileID, id int64) (*model.MealEntry, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: meal entry id must be greater than 0", ErrInvalidInput)
	}
	if err := validateProfileID(profileID); err != nil {
		return nil, err
	}
	row := db.QueryRow(mealSelectBase()+` WHERE m.id = ? AND m.profile_id = ?`, id, profileID)
	item, err := scanMealEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: meal entry %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load meal entry %d: %w", id, err)
	}
	return item, nil
}

func ListMealEntries(db *sql.DB, f ListMealsFilter) ([]model.MealEntry, error) {
	if err := validateProfileID(f.ProfileID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(f.Date) != "" && (strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "") {
		return nil, fmt.Errorf("%w: --date cannot be combined with --from or --to", ErrInvalidInput)
	}

	query := mealSelectBase() + ` WHERE m.profile_id = ?`
	args := []any{f.ProfileID}

	if strings.TrimSpace(f.Date) != "" {
		start, end, err := dayBounds(f.Date)
		if err != nil {
			return nil, err
		}
		query += ` AND m.consumed_at >= ? AND m.consumed_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.FromDate) != "" {
		from, err := parseDateStart(f.FromDate)
		if err != nil {
			return nil, err
		}
		query += ` AND m.consumed_at >= ?`
		args = append(args, from)
	}
	if strings.TrimSpace(f.ToDate) != "" {
		to, err := parseDateEndExclusive(f.ToDate)
		if err != nil {
			return nil, err
		}
		query += ` AND m.consumed_at < ?`
		args = append(args, to)
	}
	if strings.TrimSpace(f.Category) != "" {
		query += ` AND c.name = ?`
		args = append(args, normalizeName(f.Category))
	}
	query += ` ORDER BY m.consumed_at DESC`

	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.MealEntry, 0)
	for rows.Next() {
		item, err := scanMealEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal entry: %w", err)
		}
		entries = append(entries, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal entries: %w", err)
	}
	return entries, nil
}

// UpdateMealEntry rewrites an entry and adjusts the affected ledgers by the
// difference. When the entry stays on the same day a single combined delta is
// applied; when it moves, the old day loses the original contribution and the
// new day gains the recalculated one.
func UpdateMealEntry(db *sql.DB, in UpdateMealInput) error {
	if in.ID <= 0 {
		return fmt.Errorf("%w: meal entry id must be greater than 0", ErrInvalidInput)
	}
	normalized, foodID, err := normalizeMealInput(db, in.MealEntryInput, true)
	if err != nil {
		return err
	}
	categoryID, err := categoryIDByName(db, normalized.Category)
	if err != nil {
		return err
	}
	old, err := MealEntryByID(db, in.ProfileID, in.ID)
	if err != nil {
		return err
	}

	res, err := db.Exec(`
UPDATE meal_entries
SET name = ?, category_id = ?, food_id = ?, quantity = ?, quantity_unit = ?, calories = ?, carbs_g = ?, protein_g = ?, fat_g = ?, consumed_at = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND profile_id = ?
`, normalized.Name, categoryID, foodID, normalized.Quantity, normalized.QuantityUnit,
		normalized.Calories, normalized.CarbsG, normalized.ProteinG, normalized.FatG,
		normalized.ConsumedAt.Format(time.RFC3339), nullableString(normalized.Notes), in.ID, in.ProfileID)
	if err != nil {
		return fmt.Errorf("update meal entry %d: %w", in.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: meal entry %d", ErrNotFound, in.ID)
	}

	oldDay := dayKeyOf(old.ConsumedAt)
	newDay := dayKeyOf(normalized.ConsumedAt)
	store := NewLedgerStore(db)
	if oldDay == newDay {
		_, err = ApplyNutritionContribution(store, in.ProfileID, oldDay,
			decimal.NewFromInt(int64(normalized.Calories-old.Calories)),
			quantity.FromFloat(normalized.CarbsG-old.CarbsG),
			quantity.FromFloat(normalized.ProteinG-old.ProteinG),
			quantity.FromFloat(normalized.FatG-old.FatG))
		return err
	}
	if _, err := ApplyNutritionContribution(store, in.ProfileID, oldDay,
		decimal.NewFromInt(int64(-old.Calories)),
		quantity.FromFloat(-old.CarbsG),
		quantity.FromFloat(-old.ProteinG),
		quantity.FromFloat(-old.FatG)); err != nil {
		return err
	}
	bmr, tdee, err := CurrentMetabolics(db, in.ProfileID)
	if err != nil {
		return err
	}
	if _, err := GetOrCreateLedger(store, in.ProfileID, newDay, bmr, tdee); err != nil {
		return err
	}
	_, err = ApplyNutritionContribution(store, in.ProfileID, newDay,
		decimal.NewFromInt(int64(normalized.Calories)),
		quantity.FromFloat(normalized.CarbsG),
		quantity.FromFloat(normalized.ProteinG),
		quantity.FromFloat(normalized.FatG))
	return err
}

func DeleteMealEntry(db *sql.DB, profileID, id int64) error {
	old, err := MealEntryByID(db, profileID, id)
	if err != nil {
		return err
	}
	res, err := db.Exec(`DELETE FROM meal_entries WHERE id = ? AND profile_id = ?`, id, profileID)
	if err != nil {
		return fmt.Errorf("delete meal entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: meal entry %d", ErrNotFound, id)
	}

	_, err = ApplyNutritionContribution(NewLedgerStore(db), profileID, dayKeyOf(old.ConsumedAt),
		decimal.NewFromInt(int64(-old.Calories)),
		quantity.FromFloat(-old.CarbsG),
		quantity.FromFloat(-old.ProteinG),
		quantity.FromFloat(-old.FatG))
	return err
}

func normalizeMealInput(db *sql.DB, in MealEntryInput, requireTime bool) (MealEntryInput, *int64, error) {
	if err := validateProfileID(in.ProfileID); err != nil {
		return in, nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.ConsumedAt.IsZero() {
		if requireTime {
			return in, nil, fmt.Errorf("%w: consumed date/time is required", ErrInvalidInput)
		}
		in.ConsumedAt = time.Now()
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	in.QuantityUnit = normalizeName(in.QuantityUnit)
	if in.QuantityUnit == "" {
		in.QuantityUnit = string(model.UnitServing)
	}
	switch model.QuantityUnit(in.QuantityUnit) {
	case model.UnitServing, model.UnitGrams:
	default:
		return in, nil, fmt.Errorf("%w: quantity unit must be serving or g", ErrInvalidInput)
	}

	if strings.TrimSpace(in.Food) != "" {
		food, err := ResolveFood(db, in.Food)
		if err != nil {
			return in, nil, err
		}
		if food.ArchivedAt != nil {
			return in, nil, fmt.Errorf("%w: food %q is archived", ErrInvalidInput, food.Name)
		}
		calc, err := CalculateNutrition(*food, in.Quantity, model.QuantityUnit(in.QuantityUnit))
		if err != nil {
			return in, nil, err
		}
		if in.Name == "" {
			in.Name = food.Name
		}
		in.Calories = calc.Calories
		in.CarbsG = calc.CarbsG.InexactFloat64()
		in.ProteinG = calc.ProteinG.InexactFloat64()
		in.FatG = calc.FatG.InexactFloat64()
		return in, &food.ID, nil
	}

	if in.Name == "" {
		return in, nil, fmt.Errorf("%w: meal name is required", ErrInvalidInput)
	}
	if err := validatePositiveFloat("quantity", in.Quantity); err != nil {
		return in, nil, err
	}
	if err := validateNonNegativeInt("calories", in.Calories); err != nil {
		return in, nil, err
	}
	if err := validateNonNegativeFloat("carbs", in.CarbsG); err != nil {
		return in, nil, err
	}
	if err := validateNonNegativeFloat("protein", in.ProteinG); err != nil {
		return in, nil, err
	}
	if err := validateNonNegativeFloat("fat", in.FatG); err != nil {
		return in, nil, err
	}
	return in, nil, nil
}

func mealSelectBase() string {
	return `
SELECT m.id, m.profile_id, m.name, m.category_id, c.name, m.food_id, m.quantity, m.quantity_unit,
       m.calories, m.carbs_g, m.protein_g, m.fat_g, m.consumed_at, IFNULL(m.notes, ''), m.created_at, m.updated_at
FROM meal_entries m
JOIN meal_categories c ON c.id = m.category_id`
}

func scanMealEntry(row rowScanner) (*model.MealEntry, error) {
	var item model.MealEntry
	var foodID sql.NullInt64
	var unit string
	var consumedRaw, createdRaw, updatedRaw string
	if err := row.Scan(&item.ID, &item.ProfileID, &item.Name, &item.CategoryID, &item.Category, &foodID,
		&item.Quantity, &unit, &item.Calories, &item.CarbsG, &item.ProteinG, &item.FatG,
		&consumedRaw, &item.Notes, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if foodID.Valid {
		v := foodID.Int64
		item.FoodID = &v
	}
	item.QuantityUnit = model.QuantityUnit(unit)
	consumedAt, err := time.Parse(time.RFC3339, consumedRaw)
	if err != nil {
		return nil, fmt.Errorf("parse consumed_at for meal entry %d: %w", item.ID, err)
	}
	item.ConsumedAt = consumedAt
	item.CreatedAt, _ = time.Parse(time.RFC3339, createdRaw)
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return &item, nil
}
