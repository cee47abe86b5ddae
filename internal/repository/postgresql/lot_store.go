package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"parking_rental/internal/domain"
	"parking_rental/internal/repository"
)

type pgLotStore struct {
	db *sql.DB
}

func NewPgLotStore(db *sql.DB) repository.LotStore {
	return &pgLotStore{db: db}
}

func (r *pgLotStore) Close() error {
	return r.db.Close()
}

func (r *pgLotStore) Load(ctx context.Context) (*domain.LotSnapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("LotStore.Load (begin): %w", err)
	}
	defer tx.Rollback()

	var dailyMax decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT daily_max FROM lot_settings WHERE id`).Scan(&dailyMax)
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

	floorRows, err := tx.QueryContext(ctx, `SELECT name, next_seq FROM floors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("LotStore.Load (floors): %w", err)
	}
	index := make(map[string]int)
	for floorRows.Next() {
		var f domain.Floor
		if err := floorRows.Scan(&f.Name, &f.NextSeq); err != nil {
			floorRows.Close()
			return nil, fmt.Errorf("LotStore.Load (scanning floor): %w", err)
		}
		index[f.Name] = len(snap.Floors)
		snap.Floors = append(snap.Floors, f)
	}
	floorRows.Close()
	if err := floorRows.Err(); err != nil {
		return nil, fmt.Errorf("LotStore.Load (floors rows): %w", err)
	}

	spotRows, err := tx.QueryContext(ctx, `SELECT floor, spot_id, parking_type, status, assigned_vehicle_type,
	                 occupant_plate, rental_start, entrance
	           FROM parking_spots ORDER BY floor, position`)
	if err != nil {
		return nil, fmt.Errorf("LotStore.Load (spots): %w", err)
	}
	for spotRows.Next() {
		var s domain.Spot
		if err := spotRows.Scan(&s.Floor, &s.ID, &s.ParkingType, &s.Status, &s.AssignedVehicleType,
			&s.OccupantPlate, &s.RentalStart, &s.Entrance); err != nil {
			spotRows.Close()
			return nil, fmt.Errorf("LotStore.Load (scanning spot): %w", err)
		}
		if s.RentalStart.Valid {
			s.RentalStart.Time = s.RentalStart.Time.In(time.UTC)
		}
		i, ok := index[s.Floor]
		if !ok || !s.Status.Valid() {
			spotRows.Close()
			return nil, fmt.Errorf("%w: spot %s on floor %q", repository.ErrCorruptSnapshot, s.ID, s.Floor)
		}
		snap.Floors[i].Spots = append(snap.Floors[i].Spots, s)
	}
	spotRows.Close()
	if err := spotRows.Err(); err != nil {
		return nil, fmt.Errorf("LotStore.Load (spots rows): %w", err)
	}

	rentalRows, err := tx.QueryContext(ctx, `SELECT plate_number, parking_type, vehicle_type, floor, spot_id,
	                 entrance, exit_gate, rental_start, rental_end, payment
	           FROM rentals ORDER BY plate_number`)
	if err != nil {
		return nil, fmt.Errorf("LotStore.Load (rentals): %w", err)
	}
	for rentalRows.Next() {
		var rec domain.RentalRecord
		if err := rentalRows.Scan(&rec.PlateNumber, &rec.ParkingType, &rec.VehicleType, &rec.Floor, &rec.SpotID,
			&rec.Entrance, &rec.Exit, &rec.RentalStart, &rec.RentalEnd, &rec.Payment); err != nil {
			rentalRows.Close()
			return nil, fmt.Errorf("LotStore.Load (scanning rental): %w", err)
		}
		if rec.RentalStart.Valid {
			rec.RentalStart.Time = rec.RentalStart.Time.In(time.UTC)
		}
		if rec.RentalEnd.Valid {
			rec.RentalEnd.Time = rec.RentalEnd.Time.In(time.UTC)
		}
		snap.Rentals = append(snap.Rentals, rec)
	}
	rentalRows.Close()
	if err := rentalRows.Err(); err != nil {
		return nil, fmt.Errorf("LotStore.Load (rentals rows): %w", err)
	}

	rateRows, err := tx.QueryContext(ctx, `SELECT parking_type, hourly_rate FROM rates`)
	if err != nil {
		return nil, fmt.Errorf("LotStore.Load (rates): %w", err)
	}
	for rateRows.Next() {
		var pt domain.ParkingType
		var rate decimal.Decimal
		if err := rateRows.Scan(&pt, &rate); err != nil {
			rateRows.Close()
			return nil, fmt.Errorf("LotStore.Load (scanning rate): %w", err)
		}
		snap.Rates.Hourly[pt] = rate
	}
	rateRows.Close()
	if err := rateRows.Err(); err != nil {
		return nil, fmt.Errorf("LotStore.Load (rates rows): %w", err)
	}

	eligRows, err := tx.QueryContext(ctx, `SELECT parking_type, vehicle_types FROM eligibility`)
	if err != nil {
		return nil, fmt.Errorf("LotStore.Load (eligibility): %w", err)
	}
	defer eligRows.Close()
	for eligRows.Next() {
		var pt domain.ParkingType
		var vehicleTypes []string
		if err := eligRows.Scan(&pt, pq.Array(&vehicleTypes)); err != nil {
			return nil, fmt.Errorf("LotStore.Load (scanning eligibility): %w", err)
		}
		vts := make([]domain.VehicleType, len(vehicleTypes))
		for i, vt := range vehicleTypes {
			vts[i] = domain.VehicleType(vt)
		}
		snap.Eligibility.Set(pt, vts)
	}
	if err := eligRows.Err(); err != nil {
		return nil, fmt.Errorf("LotStore.Load (eligibility rows): %w", err)
	}
	return snap, nil
}

const (
	saveAttempts = 3

	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// Save rewrites every table inside a single serializable transaction,
// retrying when PostgreSQL aborts it with a serialization failure.
func (r *pgLotStore) Save(ctx context.Context, snap *domain.LotSnapshot) error {
	var err error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		err = r.saveTx(ctx, snap)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		log.Printf("LotStore: serialization failure on save (attempt %d/%d): %v", attempt, saveAttempts, err)
	}
	return err
}

// isSerializationFailure reports SQLSTATE 40001 and 40P01, which are safe to retry.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

func (r *pgLotStore) saveTx(ctx context.Context, snap *domain.LotSnapshot) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("LotStore.Save (begin): %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE floors, parking_spots, rentals, rates, eligibility, lot_settings`); err != nil {
		return fmt.Errorf("LotStore.Save (truncate): %w", err)
	}

	for fi, f := range snap.Floors {
		if _, err := tx.ExecContext(ctx, `INSERT INTO floors (name, position, next_seq) VALUES ($1, $2, $3)`,
			f.Name, fi, f.NextSeq); err != nil {
			return fmt.Errorf("LotStore.Save (floor %s): %w", f.Name, err)
		}
		for si, s := range f.Spots {
			if _, err := tx.ExecContext(ctx, `INSERT INTO parking_spots
			           (floor, spot_id, position, parking_type, status, assigned_vehicle_type, occupant_plate, rental_start, entrance)
			           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				f.Name, s.ID, si, string(s.ParkingType), string(s.Status), string(s.AssignedVehicleType),
				s.OccupantPlate, s.RentalStart, s.Entrance); err != nil {
				return fmt.Errorf("LotStore.Save (spot %s): %w", s.ID, err)
			}
		}
	}

	for _, rec := range snap.Rentals {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rentals
		           (plate_number, parking_type, vehicle_type, floor, spot_id, entrance, exit_gate, rental_start, rental_end, payment)
		           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			rec.PlateNumber, string(rec.ParkingType), string(rec.VehicleType), rec.Floor, rec.SpotID, rec.Entrance,
			rec.Exit, rec.RentalStart, rec.RentalEnd, rec.Payment); err != nil {
			return fmt.Errorf("LotStore.Save (rental %s): %w", rec.PlateNumber, err)
		}
	}

	for pt, rate := range snap.Rates.Hourly {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rates (parking_type, hourly_rate) VALUES ($1, $2)`,
			string(pt), rate); err != nil {
			return fmt.Errorf("LotStore.Save (rate %s): %w", pt, err)
		}
	}

	for _, pt := range snap.Eligibility.ParkingTypes() {
		vts := snap.Eligibility.VehicleTypes(pt)
		names := make([]string, len(vts))
		for i, vt := range vts {
			names[i] = string(vt)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO eligibility (parking_type, vehicle_types) VALUES ($1, $2)`,
			string(pt), pq.Array(names)); err != nil {
			return fmt.Errorf("LotStore.Save (eligibility %s): %w", pt, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO lot_settings (id, daily_max) VALUES (TRUE, $1)`,
		snap.Rates.DailyMax); err != nil {
		return fmt.Errorf("LotStore.Save (settings): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("LotStore.Save (commit): %w", err)
	}
	return nil
}
