package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"

	"parking_rental/internal/domain"
	"parking_rental/internal/repository"
)

const dailyMaxKey = "daily_max"

type sqliteLotStore struct {
	db *sql.DB
}

func NewSQLiteLotStore(db *sql.DB) repository.LotStore {
	return &sqliteLotStore{db: db}
}

func (r *sqliteLotStore) Close() error {
	return r.db.Close()
}

func (r *sqliteLotStore) Load(ctx context.Context) (*domain.LotSnapshot, error) {
	var dailyMax decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, dailyMaxKey).Scan(&dailyMax)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("LotStore.Load (settings): %w", err)
	}

	snap := &domain.LotSnapshot{
		Rates:       domain.NewRateTable(dailyMax),
		Eligibility: domain.EligibilityTable{},
	}
	if err := r.loadFloors(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadRentals(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadRates(ctx, snap); err != nil {
		return nil, err
	}
	if err := r.loadEligibility(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *sqliteLotStore) loadFloors(ctx context.Context, snap *domain.LotSnapshot) error {
	rows, err := r.db.QueryContext(ctx, `SELECT name, next_seq FROM floors ORDER BY position`)
	if err != nil {
		return fmt.Errorf("LotStore.Load (floors): %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var f domain.Floor
		if err := rows.Scan(&f.Name, &f.NextSeq); err != nil {
			return fmt.Errorf("LotStore.Load (scanning floor): %w", err)
		}
		index[f.Name] = len(snap.Floors)
		snap.Floors = append(snap.Floors, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("LotStore.Load (floors rows): %w", err)
	}

	spotRows, err := r.db.QueryContext(ctx, `SELECT floor, spot_id, parking_type, status, assigned_vehicle_type,
		       occupant_plate, rental_start, entrance
		FROM parking_spots ORDER BY floor, position`)
	if err != nil {
		return fmt.Errorf("LotStore.Load (spots): %w", err)
	}
	defer spotRows.Close()

	for spotRows.Next() {
		var s domain.Spot
		var start sql.NullInt64
		if err := spotRows.Scan(&s.Floor, &s.ID, &s.ParkingType, &s.Status, &s.AssignedVehicleType,
			&s.OccupantPlate, &start, &s.Entrance); err != nil {
			return fmt.Errorf("LotStore.Load (scanning spot): %w", err)
		}
		s.RentalStart = nanosToTime(start)
		i, ok := index[s.Floor]
		if !ok || !s.Status.Valid() {
			return fmt.Errorf("%w: spot %s on floor %q", repository.ErrCorruptSnapshot, s.ID, s.Floor)
		}
		snap.Floors[i].Spots = append(snap.Floors[i].Spots, s)
	}
	if err := spotRows.Err(); err != nil {
		return fmt.Errorf("LotStore.Load (spots rows): %w", err)
	}
	return nil
}

func (r *sqliteLotStore) loadRentals(ctx context.Context, snap *domain.LotSnapshot) error {
	rows, err := r.db.QueryContext(ctx, `SELECT plate_number, parking_type, vehicle_type, floor, spot_id,
		       entrance, exit_gate, rental_start, rental_end, payment
		FROM rentals ORDER BY plate_number`)
	if err != nil {
		return fmt.Errorf("LotStore.Load (rentals): %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.RentalRecord
		var start, end sql.NullInt64
		if err := rows.Scan(&rec.PlateNumber, &rec.ParkingType, &rec.VehicleType, &rec.Floor, &rec.SpotID,
			&rec.Entrance, &rec.Exit, &start, &end, &rec.Payment); err != nil {
			return fmt.Errorf("LotStore.Load (scanning rental): %w", err)
		}
		rec.RentalStart = nanosToTime(start)
		rec.RentalEnd = nanosToTime(end)
		snap.Rentals = append(snap.Rentals, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("LotStore.Load (rentals rows): %w", err)
	}
	return nil
}

func (r *sqliteLotStore) loadRates(ctx context.Context, snap *domain.LotSnapshot) error {
	rows, err := r.db.QueryContext(ctx, `SELECT parking_type, hourly_rate FROM rates`)
	if err != nil {
		return fmt.Errorf("LotStore.Load (rates): %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pt domain.ParkingType
		var rate decimal.Decimal
		if err := rows.Scan(&pt, &rate); err != nil {
			return fmt.Errorf("LotStore.Load (scanning rate): %w", err)
		}
		snap.Rates.Hourly[pt] = rate
	}
	return rows.Err()
}

func (r *sqliteLotStore) loadEligibility(ctx context.Context, snap *domain.LotSnapshot) error {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM parking_types`)
	if err != nil {
		return fmt.Errorf("LotStore.Load (parking types): %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pt domain.ParkingType
		if err := rows.Scan(&pt); err != nil {
			return fmt.Errorf("LotStore.Load (scanning parking type): %w", err)
		}
		snap.Eligibility.Set(pt, nil)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	pairs, err := r.db.QueryContext(ctx, `SELECT parking_type, vehicle_type FROM eligibility`)
	if err != nil {
		return fmt.Errorf("LotStore.Load (eligibility): %w", err)
	}
	defer pairs.Close()
	for pairs.Next() {
		var pt domain.ParkingType
		var vt domain.VehicleType
		if err := pairs.Scan(&pt, &vt); err != nil {
			return fmt.Errorf("LotStore.Load (scanning eligibility): %w", err)
		}
		if !snap.Eligibility.Has(pt) {
			return fmt.Errorf("%w: eligibility for unknown parking type %q", repository.ErrCorruptSnapshot, pt)
		}
		snap.Eligibility[pt][vt] = struct{}{}
	}
	return pairs.Err()
}

// Save rewrites every table inside a single transaction.
func (r *sqliteLotStore) Save(ctx context.Context, snap *domain.LotSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("LotStore.Save (begin): %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"floors", "parking_spots", "rentals", "rates", "parking_types", "eligibility", "settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("LotStore.Save (clear %s): %w", table, err)
		}
	}

	for fi, f := range snap.Floors {
		if _, err := tx.ExecContext(ctx, `INSERT INTO floors (name, position, next_seq) VALUES (?, ?, ?)`,
			f.Name, fi, f.NextSeq); err != nil {
			return fmt.Errorf("LotStore.Save (floor %s): %w", f.Name, err)
		}
		for si, s := range f.Spots {
			if _, err := tx.ExecContext(ctx, `INSERT INTO parking_spots
				(floor, spot_id, position, parking_type, status, assigned_vehicle_type, occupant_plate, rental_start, entrance)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				f.Name, s.ID, si, string(s.ParkingType), string(s.Status), string(s.AssignedVehicleType), s.OccupantPlate,
				timeToNanos(s.RentalStart), s.Entrance); err != nil {
				return fmt.Errorf("LotStore.Save (spot %s): %w", s.ID, err)
			}
		}
	}

	for _, rec := range snap.Rentals {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rentals
			(plate_number, parking_type, vehicle_type, floor, spot_id, entrance, exit_gate, rental_start, rental_end, payment)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.PlateNumber, string(rec.ParkingType), string(rec.VehicleType), rec.Floor, rec.SpotID, rec.Entrance,
			rec.Exit, timeToNanos(rec.RentalStart), timeToNanos(rec.RentalEnd), rec.Payment.String()); err != nil {
			return fmt.Errorf("LotStore.Save (rental %s): %w", rec.PlateNumber, err)
		}
	}

	for pt, rate := range snap.Rates.Hourly {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rates (parking_type, hourly_rate) VALUES (?, ?)`,
			string(pt), rate.String()); err != nil {
			return fmt.Errorf("LotStore.Save (rate %s): %w", pt, err)
		}
	}

	for _, pt := range snap.Eligibility.ParkingTypes() {
		if _, err := tx.ExecContext(ctx, `INSERT INTO parking_types (name) VALUES (?)`, string(pt)); err != nil {
			return fmt.Errorf("LotStore.Save (parking type %s): %w", pt, err)
		}
		for _, vt := range snap.Eligibility.VehicleTypes(pt) {
			if _, err := tx.ExecContext(ctx, `INSERT INTO eligibility (parking_type, vehicle_type) VALUES (?, ?)`,
				string(pt), string(vt)); err != nil {
				return fmt.Errorf("LotStore.Save (eligibility %s/%s): %w", pt, vt, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`,
		dailyMaxKey, snap.Rates.DailyMax.String()); err != nil {
		return fmt.Errorf("LotStore.Save (settings): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("LotStore.Save (commit): %w", err)
	}
	return nil
}

func timeToNanos(t null.Time) sql.NullInt64 {
	if !t.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Time.UnixNano(), Valid: true}
}

func nanosToTime(n sql.NullInt64) null.Time {
	if !n.Valid {
		return null.Time{}
	}
	return null.TimeFrom(time.Unix(0, n.Int64).UTC())
}
