package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  sex TEXT CHECK(sex IN ('male', 'female')),
  birth_date TEXT,
  height_cm REAL CHECK(height_cm > 0),
  activity_level TEXT CHECK(activity_level IN ('sedentary', 'light', 'moderate', 'active', 'very_active')),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meal_categories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  archived_at DATETIME
);

CREATE TABLE IF NOT EXISTS foods (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  name_norm TEXT NOT NULL UNIQUE,
  brand TEXT NOT NULL DEFAULT '',
  calories INTEGER NOT NULL CHECK(calories >= 0),
  carbs_g REAL NOT NULL DEFAULT 0 CHECK(carbs_g >= 0),
  protein_g REAL NOT NULL DEFAULT 0 CHECK(protein_g >= 0),
  fat_g REAL NOT NULL DEFAULT 0 CHECK(fat_g >= 0),
  fiber_g REAL CHECK(fiber_g >= 0),
  sugar_g REAL CHECK(sugar_g >= 0),
  sodium_mg REAL CHECK(sodium_mg >= 0),
  serving_size_g REAL NOT NULL DEFAULT 0 CHECK(serving_size_g >= 0),
  serving_unit TEXT NOT NULL DEFAULT 'serving',
  usage_count INTEGER NOT NULL DEFAULT 0,
  last_used_at DATETIME,
  archived_at DATETIME,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meal_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  profile_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  category_id INTEGER NOT NULL,
  food_id INTEGER,
  quantity REAL NOT NULL CHECK(quantity > 0),
  quantity_unit TEXT NOT NULL CHECK(quantity_unit IN ('serving', 'g')),
  calories INTEGER NOT NULL CHECK(calories >= 0),
  carbs_g REAL NOT NULL DEFAULT 0 CHECK(carbs_g >= 0),
  protein_g REAL NOT NULL DEFAULT 0 CHECK(protein_g >= 0),
  fat_g REAL NOT NULL DEFAULT 0 CHECK(fat_g >= 0),
  consumed_at DATETIME NOT NULL,
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(profile_id) REFERENCES profiles(id),
  FOREIGN KEY(category_id) REFERENCES meal_categories(id),
  FOREIGN KEY(food_id) REFERENCES foods(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_meal_entries_consumed_at ON meal_entries(consumed_at);
CREATE INDEX IF NOT EXISTS idx_meal_entries_profile_id ON meal_entries(profile_id);
`,
	},
	{
		version: 2,
		name:    "body_measurements",
		sql: `
CREATE TABLE IF NOT EXISTS body_measurements (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  profile_id INTEGER NOT NULL,
  measured_at DATETIME NOT NULL,
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  body_fat_pct REAL CHECK(body_fat_pct >= 0 AND body_fat_pct <= 100),
  muscle_mass_kg REAL CHECK(muscle_mass_kg > 0),
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(profile_id) REFERENCES profiles(id)
);

CREATE INDEX IF NOT EXISTS idx_body_measurements_measured_at ON body_measurements(profile_id, measured_at);
`,
	},
	{
		version: 3,
		name:    "exercise_logs",
		sql: `
CREATE TABLE IF NOT EXISTS exercise_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  profile_id INTEGER NOT NULL,
  exercise_type TEXT NOT NULL,
  intensity TEXT NOT NULL DEFAULT '' CHECK(intensity IN ('', 'low', 'moderate', 'high')),
  calories_burned INTEGER NOT NULL CHECK(calories_burned > 0),
  duration_min INTEGER NOT NULL DEFAULT 0 CHECK(duration_min >= 0),
  performed_at DATETIME NOT NULL,
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(profile_id) REFERENCES profiles(id)
);

CREATE INDEX IF NOT EXISTS idx_exercise_logs_performed_at ON exercise_logs(profile_id, performed_at);
`,
	},
	{
		version: 4,
		name:    "sleep_logs",
		sql: `
CREATE TABLE IF NOT EXISTS sleep_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  profile_id INTEGER NOT NULL,
  slept_at DATETIME NOT NULL,
  day_key TEXT NOT NULL,
  duration_min INTEGER NOT NULL CHECK(duration_min > 0),
  status TEXT NOT NULL CHECK(status IN ('good', 'fair', 'poor')),
  notes TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(profile_id, day_key),
  FOREIGN KEY(profile_id) REFERENCES profiles(id)
);
`,
	},
	{
		version: 5,
		name:    "daily_ledgers",
		sql: `
CREATE TABLE IF NOT EXISTS daily_ledgers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  profile_id INTEGER NOT NULL,
  date TEXT NOT NULL,
  bmr TEXT NOT NULL DEFAULT '0',
  tdee TEXT NOT NULL DEFAULT '0',
  net_calories TEXT NOT NULL DEFAULT '0',
  total_calories_in TEXT NOT NULL DEFAULT '0',
  total_calories_out TEXT NOT NULL DEFAULT '0',
  total_carbs_g TEXT NOT NULL DEFAULT '0',
  total_protein_g TEXT NOT NULL DEFAULT '0',
  total_fat_g TEXT NOT NULL DEFAULT '0',
  exercise_minutes INTEGER NOT NULL DEFAULT 0 CHECK(exercise_minutes >= 0),
  exercise_count INTEGER NOT NULL DEFAULT 0 CHECK(exercise_count >= 0),
  sleep_duration_min INTEGER CHECK(sleep_duration_min > 0),
  sleep_status TEXT CHECK(sleep_status IN ('good', 'fair', 'poor')),
  revision INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(profile_id, date),
  FOREIGN KEY(profile_id) REFERENCES profiles(id)
);

CREATE INDEX IF NOT EXISTS idx_daily_ledgers_date ON daily_ledgers(date);
`,
	},
	{
		version: 6,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 7,
		name:    "import_batches",
		sql: `
CREATE TABLE IF NOT EXISTS import_batches (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  kind TEXT NOT NULL,
  item_count INTEGER NOT NULL DEFAULT 0,
  imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

var defaultCategories = []string{"breakfast", "lunch", "dinner", "snacks"}

const defaultProfileName = "default"

var defaultConfig = []struct {
	key   string
	value string
}{
	{"sleep_boundary_hour", "2"},
	{"weight_unit", "kg"},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	for _, name := range defaultCategories {
		if _, err := db.Exec(`INSERT OR IGNORE INTO meal_categories(name, is_default) VALUES(?, 1)`, name); err != nil {
			return fmt.Errorf("seed default category %s: %w", name, err)
		}
	}

	if _, err := db.Exec(`INSERT OR IGNORE INTO profiles(name) VALUES(?)`, defaultProfileName); err != nil {
		return fmt.Errorf("seed default profile: %w", err)
	}

	for _, c := range defaultConfig {
		if _, err := db.Exec(`INSERT OR IGNORE INTO app_config(key, value) VALUES(?, ?)`, c.key, c.value); err != nil {
			return fmt.Errorf("seed config %s: %w", c.key, err)
		}
	}

	return nil
}
