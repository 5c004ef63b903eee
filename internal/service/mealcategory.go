package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fittcha/bodii/internal/model"
)

func AddMealCategory(db *sql.DB, name string) error {
	name = normalizeName(name)
	if name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if _, err := db.Exec(`INSERT INTO meal_categories(name, is_default) VALUES(?, 0)`, name); err != nil {
		return fmt.Errorf("add category %q: %w", name, err)
	}
	return nil
}

func ListMealCategories(db *sql.DB) ([]model.MealCategory, error) {
	rows, err := db.Query(`SELECT id, name, is_default, created_at FROM meal_categories WHERE archived_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.MealCategory, 0)
	for rows.Next() {
		var c model.MealCategory
		var isDefault int
		var createdRaw string
		if err := rows.Scan(&c.ID, &c.Name, &isDefault, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.IsDefault = isDefault == 1
		c.CreatedAt, _ = parseStoredTime(createdRaw)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func RenameMealCategory(db *sql.DB, oldName, newName string) error {
	oldName = normalizeName(oldName)
	newName = normalizeName(newName)
	if oldName == "" || newName == "" {
		return fmt.Errorf("%w: old and new category names are required", ErrInvalidInput)
	}
	res, err := db.Exec(`UPDATE meal_categories SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		return fmt.Errorf("rename category %q to %q: %w", oldName, newName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %q", ErrNotFound, oldName)
	}
	return nil
}

// DeleteMealCategory removes a custom category. Entries logged under it must
// be moved first; pass reassign to name the category that absorbs them. The
// seeded defaults cannot be deleted.
func DeleteMealCategory(db *sql.DB, name, reassign string) error {
	name = normalizeName(name)
	reassign = normalizeName(reassign)
	if name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if name == reassign {
		return fmt.Errorf("%w: reassign category must be different from deleted category", ErrInvalidInput)
	}

	id, err := categoryIDByName(db, name)
	if err != nil {
		return err
	}
	var isDefault int
	if err := db.QueryRow(`SELECT is_default FROM meal_categories WHERE id = ?`, id).Scan(&isDefault); err != nil {
		return fmt.Errorf("load category %q: %w", name, err)
	}
	if isDefault == 1 {
		return fmt.Errorf("%w: default category %q cannot be deleted", ErrInvalidInput, name)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(1) FROM meal_entries WHERE category_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("count entries for category %q: %w", name, err)
	}

	if count > 0 {
		if strings.TrimSpace(reassign) == "" {
			return fmt.Errorf("%w: category %q has %d entries; use --reassign to move them", ErrInvalidInput, name, count)
		}
		targetID, err := categoryIDByName(db, reassign)
		if err != nil {
			return fmt.Errorf("reassign target: %w", err)
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin delete category tx: %w", err)
		}
		if _, err := tx.Exec(`UPDATE meal_entries SET category_id = ? WHERE category_id = ?`, targetID, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reassign entries: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM meal_categories WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete category: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit delete category tx: %w", err)
		}
		return nil
	}

	if _, err := db.Exec(`DELETE FROM meal_categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category %q: %w", name, err)
	}
	return nil
}
