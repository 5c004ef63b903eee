package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fittcha/bodii/internal/model"
)

type FoodInput struct {
	Name         string
	Brand        string
	Calories     int
	CarbsG       float64
	ProteinG     float64
	FatG         float64
	FiberG       *float64
	SugarG       *float64
	SodiumMg     *float64
	ServingSizeG float64
	ServingUnit  string
}

type ListFoodsFilter struct {
	Query           string
	IncludeArchived bool
	Limit           int
}

// CreateFood adds a per-serving nutrient profile to the catalog. The
// normalized name is unique; the serving size in grams is optional but
// required before gram-based quantities can resolve against the food.
func CreateFood(db *sql.DB, in FoodInput) (int64, error) {
	normalized, err := normalizeFoodInput(in)
	if err != nil {
		return 0, err
	}
	res, err := db.Exec(`
INSERT INTO foods(name, name_norm, brand, calories, carbs_g, protein_g, fat_g, fiber_g, sugar_g, sodium_mg, serving_size_g, serving_unit)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, normalized.Name, normalizeName(normalized.Name), normalized.Brand, normalized.Calories,
		normalized.CarbsG, normalized.ProteinG, normalized.FatG,
		normalized.FiberG, normalized.SugarG, normalized.SodiumMg,
		normalized.ServingSizeG, normalized.ServingUnit)
	if err != nil {
		return 0, fmt.Errorf("create food %q: %w", normalized.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve food id: %w", err)
	}
	return id, nil
}

// ResolveFood accepts a numeric id or a food name.
func ResolveFood(db *sql.DB, idOrName string) (*model.Food, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, fmt.Errorf("%w: food id or name is required", ErrInvalidInput)
	}
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		return FoodByID(db, id)
	}
	row := db.QueryRow(foodSelectBase()+` WHERE name_norm = ?`, normalizeName(idOrName))
	item, err := scanFood(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: food %q", ErrNotFound, idOrName)
	}
	if err != nil {
		return nil, fmt.Errorf("load food %q: %w", idOrName, err)
	}
	return item, nil
}

func FoodByID(db *sql.DB, id int64) (*model.Food, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: food id must be greater than 0", ErrInvalidInput)
	}
	row := db.QueryRow(foodSelectBase()+` WHERE id = ?`, id)
	item, err := scanFood(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: food %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load food %d: %w", id, err)
	}
	return item, nil
}

func ListFoods(db *sql.DB, f ListFoodsFilter) ([]model.Food, error) {
	query := foodSelectBase() + ` WHERE 1=1`
	args := make([]any, 0)
	if !f.IncludeArchived {
		query += ` AND archived_at IS NULL`
	}
	if q := normalizeName(f.Query); q != "" {
		query += ` AND name_norm LIKE ?`
		args = append(args, "%"+q+"%")
	}
	query += ` ORDER BY usage_count DESC, last_used_at DESC, name ASC`
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	items := make([]model.Food, 0)
	for rows.Next() {
		item, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return items, nil
}

// UpdateFood rewrites a catalog entry. Meal entries keep the nutrition that
// was calculated when they were logged; edits here only affect future logs.
func UpdateFood(db *sql.DB, id int64, in FoodInput) error {
	if id <= 0 {
		return fmt.Errorf("%w: food id must be greater than 0", ErrInvalidInput)
	}
	normalized, err := normalizeFoodInput(in)
	if err != nil {
		return err
	}
	res, err := db.Exec(`
UPDATE foods
SET name = ?, name_norm = ?, brand = ?, calories = ?, carbs_g = ?, protein_g = ?, fat_g = ?, fiber_g = ?, sugar_g = ?, sodium_mg = ?, serving_size_g = ?, serving_unit = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, normalized.Name, normalizeName(normalized.Name), normalized.Brand, normalized.Calories,
		normalized.CarbsG, normalized.ProteinG, normalized.FatG,
		normalized.FiberG, normalized.SugarG, normalized.SodiumMg,
		normalized.ServingSizeG, normalized.ServingUnit, id)
	if err != nil {
		return fmt.Errorf("update food %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: food %d", ErrNotFound, id)
	}
	return nil
}

func ArchiveFood(db *sql.DB, idOrName string) error {
	item, err := ResolveFood(db, idOrName)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`UPDATE foods SET archived_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, item.ID); err != nil {
		return fmt.Errorf("archive food %d: %w", item.ID, err)
	}
	return nil
}

func RestoreFood(db *sql.DB, idOrName string) error {
	item, err := ResolveFood(db, idOrName)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`UPDATE foods SET archived_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, item.ID); err != nil {
		return fmt.Errorf("restore food %d: %w", item.ID, err)
	}
	return nil
}

func touchFoodUsage(db *sql.DB, id int64) error {
	if _, err := db.Exec(`UPDATE foods SET usage_count = usage_count + 1, last_used_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("bump food usage %d: %w", id, err)
	}
	return nil
}

func normalizeFoodInput(in FoodInput) (FoodInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: food name is required", ErrInvalidInput)
	}
	in.Brand = strings.TrimSpace(in.Brand)
	if err := validateNonNegativeInt("calories", in.Calories); err != nil {
		return in, err
	}
	if err := validateNonNegativeFloat("carbs", in.CarbsG); err != nil {
		return in, err
	}
	if err := validateNonNegativeFloat("protein", in.ProteinG); err != nil {
		return in, err
	}
	if err := validateNonNegativeFloat("fat", in.FatG); err != nil {
		return in, err
	}
	for name, v := range map[string]*float64{"fiber": in.FiberG, "sugar": in.SugarG, "sodium": in.SodiumMg} {
		if v != nil {
			if err := validateNonNegativeFloat(name, *v); err != nil {
				return in, err
			}
		}
	}
	if err := validateNonNegativeFloat("serving size", in.ServingSizeG); err != nil {
		return in, err
	}
	in.ServingUnit = normalizeName(in.ServingUnit)
	if in.ServingUnit == "" {
		in.ServingUnit = "serving"
	}
	return in, nil
}

func foodSelectBase() string {
	return `
SELECT id, name, name_norm, brand, calories, carbs_g, protein_g, fat_g, fiber_g, sugar_g, sodium_mg,
       serving_size_g, serving_unit, usage_count, last_used_at, archived_at, created_at, updated_at
FROM foods`
}

func scanFood(row rowScanner) (*model.Food, error) {
	var item model.Food
	var fiber, sugar, sodium sql.NullFloat64
	var lastUsed, archived sql.NullString
	var createdRaw, updatedRaw string
	if err := row.Scan(&item.ID, &item.Name, &item.NameNorm, &item.Brand, &item.Calories,
		&item.CarbsG, &item.ProteinG, &item.FatG, &fiber, &sugar, &sodium,
		&item.ServingSizeG, &item.ServingUnit, &item.UsageCount, &lastUsed, &archived,
		&createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if fiber.Valid {
		v := fiber.Float64
		item.FiberG = &v
	}
	if sugar.Valid {
		v := sugar.Float64
		item.SugarG = &v
	}
	if sodium.Valid {
		v := sodium.Float64
		item.SodiumMg = &v
	}
	if lastUsed.Valid && lastUsed.String != "" {
		if t, err := parseStoredTime(lastUsed.String); err == nil {
			item.LastUsedAt = &t
		}
	}
	if archived.Valid && archived.String != "" {
		if t, err := parseStoredTime(archived.String); err == nil {
			item.ArchivedAt = &t
		}
	}
	item.CreatedAt, _ = time.Parse(time.RFC3339, createdRaw)
	item.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return &item, nil
}

// parseStoredTime accepts both RFC3339 values written by the services and
// the CURRENT_TIMESTAMP format sqlite writes for defaults.
func parseStoredTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04:05", value, time.UTC)
}
