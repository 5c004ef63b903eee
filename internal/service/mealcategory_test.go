package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fittcha/bodii/internal/service"
)

func TestMealCategoryLifecycle(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	pid := defaultProfileID(t, sqldb)

	if err := service.AddMealCategory(sqldb, "supper"); err != nil {
		t.Fatalf("add category: %v", err)
	}

	id, err := service.CreateMealEntry(sqldb, service.MealEntryInput{
		ProfileID:  pid,
		Name:       "Chicken Bowl",
		Category:   "supper",
		Calories:   550,
		ConsumedAt: time.Date(2026, 2, 20, 19, 30, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatalf("create meal entry: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected inserted entry id > 0, got %d", id)
	}

	if err := service.DeleteMealCategory(sqldb, "supper", ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected delete without reassign to fail, got %v", err)
	}
	if err := service.DeleteMealCategory(sqldb, "supper", "dinner"); err != nil {
		t.Fatalf("delete category with reassignment: %v", err)
	}

	reassigned, err := service.ListMealEntries(sqldb, service.ListMealsFilter{ProfileID: pid, Category: "dinner"})
	if err != nil {
		t.Fatalf("list reassigned entries: %v", err)
	}
	if len(reassigned) != 1 {
		t.Fatalf("expected reassigned entry count 1, got %d", len(reassigned))
	}
}

func TestDeleteMealCategoryProtectsDefaults(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if err := service.DeleteMealCategory(sqldb, "breakfast", ""); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("expected default category to be protected, got %v", err)
	}
}

func TestRenameMealCategory(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	if err := service.AddMealCategory(sqldb, "late night"); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if err := service.RenameMealCategory(sqldb, "late night", "midnight"); err != nil {
		t.Fatalf("rename category: %v", err)
	}
	if err := service.RenameMealCategory(sqldb, "late night", "other"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for old name, got %v", err)
	}

	categories, err := service.ListMealCategories(sqldb)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	found := false
	for _, c := range categories {
		if c.Name == "midnight" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected renamed category in list")
	}
}
