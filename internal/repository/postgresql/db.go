package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"parking_rental/internal/config"
)

// Money columns are unconstrained NUMERIC: rates round-trip at any scale.
const schema = `
CREATE TABLE IF NOT EXISTS floors (
	name     TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	next_seq INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS parking_spots (
	floor                 TEXT NOT NULL REFERENCES floors (name) ON DELETE CASCADE,
	spot_id               TEXT NOT NULL,
	position              INTEGER NOT NULL,
	parking_type          TEXT NOT NULL,
	status                TEXT NOT NULL,
	assigned_vehicle_type TEXT NOT NULL DEFAULT '',
	occupant_plate        TEXT NOT NULL DEFAULT '',
	rental_start          TIMESTAMPTZ,
	entrance              INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (floor, spot_id)
);
CREATE TABLE IF NOT EXISTS rentals (
	plate_number TEXT PRIMARY KEY,
	parking_type TEXT NOT NULL DEFAULT '',
	vehicle_type TEXT NOT NULL DEFAULT '',
	floor        TEXT NOT NULL DEFAULT '',
	spot_id      TEXT NOT NULL DEFAULT '',
	entrance     INTEGER NOT NULL DEFAULT 0,
	exit_gate    INTEGER,
	rental_start TIMESTAMPTZ,
	rental_end   TIMESTAMPTZ,
	payment      NUMERIC NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS rates (
	parking_type TEXT PRIMARY KEY,
	hourly_rate  NUMERIC NOT NULL CHECK (hourly_rate >= 0)
);
CREATE TABLE IF NOT EXISTS eligibility (
	parking_type  TEXT PRIMARY KEY,
	vehicle_types TEXT[] NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS lot_settings (
	id        BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
	daily_max NUMERIC NOT NULL CHECK (daily_max >= 0)
);
ALTER TABLE rentals ALTER COLUMN payment TYPE NUMERIC;
ALTER TABLE rates ALTER COLUMN hourly_rate TYPE NUMERIC;
ALTER TABLE lot_settings ALTER COLUMN daily_max TYPE NUMERIC;`

func NewDB(cfg *config.Config) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSslMode)

	db, err := sql.Open("pgx", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate creates the lot tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate lot schema: %w", err)
	}
	return nil
}
