package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fittcha/bodii/internal/model"
)

type ProfileInput struct {
	Name          string
	Sex           string
	BirthDate     string
	HeightCm      float64
	ActivityLevel string
}

// SetProfileInput updates only the non-nil fields; the rest keep their stored
// values.
type SetProfileInput struct {
	ID            int64
	Sex           *string
	BirthDate     *string
	HeightCm      *float64
	ActivityLevel *string
}

func CreateProfile(db *sql.DB, in ProfileInput) (int64, error) {
	name := normalizeName(in.Name)
	if name == "" {
		return 0, fmt.Errorf("%w: profile name is required", ErrInvalidInput)
	}
	sex, birth, height, level, err := normalizeProfileFields(in.Sex, in.BirthDate, in.HeightCm, in.ActivityLevel)
	if err != nil {
		return 0, err
	}
	res, err := db.Exec(`
INSERT INTO profiles(name, sex, birth_date, height_cm, activity_level)
VALUES(?, ?, ?, ?, ?)
`, name, sex, birth, height, level)
	if err != nil {
		return 0, fmt.Errorf("create profile %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve profile id: %w", err)
	}
	return id, nil
}

// EnsureProfile resolves a profile by name, creating an empty one when it
// does not exist yet.
func EnsureProfile(db *sql.DB, name string) (*model.Profile, error) {
	p, err := ProfileByName(db, name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := CreateProfile(db, ProfileInput{Name: name}); err != nil {
		return nil, err
	}
	return ProfileByName(db, name)
}

func SetProfile(db *sql.DB, in SetProfileInput) error {
	p, err := ProfileByID(db, in.ID)
	if err != nil {
		return err
	}

	sexIn := ""
	if in.Sex != nil {
		sexIn = *in.Sex
	} else if p.Sex != nil {
		sexIn = string(*p.Sex)
	}
	birthIn := ""
	if in.BirthDate != nil {
		birthIn = *in.BirthDate
	} else if p.BirthDate != nil {
		birthIn = p.BirthDate.Format(dayKeyLayout)
	}
	heightIn := 0.0
	if in.HeightCm != nil {
		heightIn = *in.HeightCm
	} else if p.HeightCm != nil {
		heightIn = *p.HeightCm
	}
	levelIn := ""
	if in.ActivityLevel != nil {
		levelIn = *in.ActivityLevel
	} else if p.ActivityLevel != nil {
		levelIn = string(*p.ActivityLevel)
	}

	sex, birth, height, level, err := normalizeProfileFields(sexIn, birthIn, heightIn, levelIn)
	if err != nil {
		return err
	}
	res, err := db.Exec(`
UPDATE profiles
SET sex = ?, birth_date = ?, height_cm = ?, activity_level = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, sex, birth, height, level, in.ID)
	if err != nil {
		return fmt.Errorf("update profile %d: %w", in.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: profile %d", ErrNotFound, in.ID)
	}
	return nil
}

func ProfileByID(db *sql.DB, id int64) (*model.Profile, error) {
	if err := validateProfileID(id); err != nil {
		return nil, err
	}
	row := db.QueryRow(`SELECT id, name, sex, birth_date, height_cm, activity_level, created_at, updated_at FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: profile %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %d: %w", id, err)
	}
	return p, nil
}

func ProfileByName(db *sql.DB, name string) (*model.Profile, error) {
	normalized := normalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("%w: profile name is required", ErrInvalidInput)
	}
	row := db.QueryRow(`SELECT id, name, sex, birth_date, height_cm, activity_level, created_at, updated_at FROM profiles WHERE name = ?`, normalized)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: profile %q", ErrNotFound, normalized)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", normalized, err)
	}
	return p, nil
}

func ListProfiles(db *sql.DB) ([]model.Profile, error) {
	rows, err := db.Query(`SELECT id, name, sex, birth_date, height_cm, activity_level, created_at, updated_at FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	items := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return items, nil
}

func scanProfile(row rowScanner) (*model.Profile, error) {
	var p model.Profile
	var sex, birth, level sql.NullString
	var height sql.NullFloat64
	var createdRaw, updatedRaw string
	if err := row.Scan(&p.ID, &p.Name, &sex, &birth, &height, &level, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if sex.Valid && sex.String != "" {
		v := model.Sex(sex.String)
		p.Sex = &v
	}
	if birth.Valid && birth.String != "" {
		t, err := time.ParseInLocation(dayKeyLayout, birth.String, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse birth_date: %w", err)
		}
		p.BirthDate = &t
	}
	if height.Valid {
		v := height.Float64
		p.HeightCm = &v
	}
	if level.Valid && level.String != "" {
		v := model.ActivityLevel(level.String)
		p.ActivityLevel = &v
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdRaw)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedRaw)
	return &p, nil
}

func normalizeProfileFields(sexIn, birthIn string, heightIn float64, levelIn string) (sex, birth, height, level any, err error) {
	if s := normalizeName(sexIn); s != "" {
		if s != string(model.SexMale) && s != string(model.SexFemale) {
			return nil, nil, nil, nil, fmt.Errorf("%w: sex must be male or female", ErrInvalidInput)
		}
		sex = s
	}
	if b := strings.TrimSpace(birthIn); b != "" {
		t, parseErr := time.ParseInLocation(dayKeyLayout, b, time.Local)
		if parseErr != nil {
			return nil, nil, nil, nil, fmt.Errorf("%w: invalid birth date %q, expected YYYY-MM-DD", ErrInvalidInput, b)
		}
		if !t.Before(time.Now()) {
			return nil, nil, nil, nil, fmt.Errorf("%w: birth date must be in the past", ErrInvalidInput)
		}
		birth = t.Format(dayKeyLayout)
	}
	if heightIn != 0 {
		if heightIn < 0 {
			return nil, nil, nil, nil, fmt.Errorf("%w: height must be greater than 0", ErrInvalidInput)
		}
		height = heightIn
	}
	if l := normalizeName(levelIn); l != "" {
		if _, ok := activityMultipliers[model.ActivityLevel(l)]; !ok {
			return nil, nil, nil, nil, fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, l)
		}
		level = l
	}
	return sex, birth, height, level, nil
}
