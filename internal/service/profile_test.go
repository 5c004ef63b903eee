package service_test

import (
	"errors"
	"testing"

	"github.com/fittcha/bodii/internal/model"
	"github.com/fittcha/bodii/internal/service"
)

func TestEnsureProfileReusesExisting(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	def, err := service.EnsureProfile(sqldb, "default")
	if err != nil {
		t.Fatalf("ensure default: %v", err)
	}
	if def.ID != 1 {
		t.Fatalf("seeded default profile id = %d, want 1", def.ID)
	}

	coach, err := service.EnsureProfile(sqldb, "Coach")
	if err != nil {
		t.Fatalf("ensure coach: %v", err)
	}
	if coach.Name != "coach" {
		t.Fatalf("profile name = %q, want normalized %q", coach.Name, "coach")
	}
	again, err := service.EnsureProfile(sqldb, "coach")
	if err != nil {
		t.Fatalf("ensure coach again: %v", err)
	}
	if again.ID != coach.ID {
		t.Fatalf("second ensure created a new profile: %d vs %d", again.ID, coach.ID)
	}

	profiles, err := service.ListProfiles(sqldb)
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
}

func TestSetProfileKeepsUnsetFields(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	profileID := int64(1)

	sex := "male"
	height := 180.0
	if err := service.SetProfile(sqldb, service.SetProfileInput{ID: profileID, Sex: &sex, HeightCm: &height}); err != nil {
		t.Fatalf("set sex and height: %v", err)
	}
	level := "active"
	if err := service.SetProfile(sqldb, service.SetProfileInput{ID: profileID, ActivityLevel: &level}); err != nil {
		t.Fatalf("set activity level: %v", err)
	}

	p, err := service.ProfileByID(sqldb, profileID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Sex == nil || *p.Sex != model.SexMale {
		t.Errorf("Sex = %v, want male kept across updates", p.Sex)
	}
	if p.HeightCm == nil || *p.HeightCm != 180 {
		t.Errorf("HeightCm = %v, want 180 kept across updates", p.HeightCm)
	}
	if p.ActivityLevel == nil || *p.ActivityLevel != model.ActivityActive {
		t.Errorf("ActivityLevel = %v, want active", p.ActivityLevel)
	}
}

func TestSetProfileValidation(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	profileID := int64(1)

	bad := "other"
	if err := service.SetProfile(sqldb, service.SetProfileInput{ID: profileID, Sex: &bad}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("bad sex: err = %v, want ErrInvalidInput", err)
	}
	future := "2999-01-01"
	if err := service.SetProfile(sqldb, service.SetProfileInput{ID: profileID, BirthDate: &future}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("future birth date: err = %v, want ErrInvalidInput", err)
	}
	level := "heroic"
	if err := service.SetProfile(sqldb, service.SetProfileInput{ID: profileID, ActivityLevel: &level}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("bad activity level: err = %v, want ErrInvalidInput", err)
	}
	if err := service.SetProfile(sqldb, service.SetProfileInput{ID: 999}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("missing profile: err = %v, want ErrNotFound", err)
	}
}
