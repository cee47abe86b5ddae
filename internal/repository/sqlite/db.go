package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS floors (
	name     TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	next_seq INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS parking_spots (
	floor                 TEXT NOT NULL,
	spot_id               TEXT NOT NULL,
	position              INTEGER NOT NULL,
	parking_type          TEXT NOT NULL,
	status                TEXT NOT NULL,
	assigned_vehicle_type TEXT NOT NULL DEFAULT '',
	occupant_plate        TEXT NOT NULL DEFAULT '',
	rental_start          INTEGER,
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
	rental_start INTEGER,
	rental_end   INTEGER,
	payment      TEXT NOT NULL DEFAULT '0'
);
CREATE TABLE IF NOT EXISTS rates (
	parking_type TEXT PRIMARY KEY,
	hourly_rate  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS parking_types (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS eligibility (
	parking_type TEXT NOT NULL,
	vehicle_type TEXT NOT NULL,
	PRIMARY KEY (parking_type, vehicle_type)
);
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// NewDB opens the SQLite file at path and creates the tables if needed.
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer; the service serializes mutations anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return db, nil
}
