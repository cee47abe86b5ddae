package service

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"

	"parking_rental/internal/domain"
)

// RentalLedger holds one record per plate that is either new or has a rental
// in progress. Settled records are erased.
type RentalLedger struct {
	records map[string]*domain.RentalRecord
}

func NewRentalLedger(records []domain.RentalRecord) *RentalLedger {
	l := &RentalLedger{records: make(map[string]*domain.RentalRecord, len(records))}
	for i := range records {
		rec := records[i]
		l.records[rec.PlateNumber] = &rec
	}
	return l
}

// GetOrCreate returns the record for plate, inserting an empty one first if
// needed. The bool reports whether a record was created.
func (l *RentalLedger) GetOrCreate(plate string) (*domain.RentalRecord, bool) {
	if rec, ok := l.records[plate]; ok {
		return rec, false
	}
	rec := &domain.RentalRecord{PlateNumber: plate, Payment: decimal.Zero}
	l.records[plate] = rec
	return rec, true
}

func (l *RentalLedger) Get(plate string) (*domain.RentalRecord, bool) {
	rec, ok := l.records[plate]
	return rec, ok
}

// StartRental overwrites the rental fields of plate's record and clears any
// previous end and exit.
func (l *RentalLedger) StartRental(plate string, pt domain.ParkingType, vt domain.VehicleType, entrance int, now time.Time) *domain.RentalRecord {
	rec, _ := l.GetOrCreate(plate)
	rec.ParkingType = pt
	rec.VehicleType = vt
	rec.Entrance = entrance
	rec.RentalStart = null.TimeFrom(now)
	rec.RentalEnd = null.Time{}
	rec.Exit = null.Int{}
	rec.Payment = decimal.Zero
	return rec
}

// CloseRental returns a copy of plate's record for billing. Records that
// were never rented count as missing.
func (l *RentalLedger) CloseRental(plate string) (domain.RentalRecord, error) {
	rec, ok := l.records[plate]
	if !ok || !rec.Active() {
		return domain.RentalRecord{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, plate)
	}
	return *rec, nil
}

func (l *RentalLedger) Remove(plate string) {
	delete(l.records, plate)
}

// Records returns copies of every record ordered by plate.
func (l *RentalLedger) Records() []domain.RentalRecord {
	out := make([]domain.RentalRecord, 0, len(l.records))
	for _, plate := range slices.Sorted(maps.Keys(l.records)) {
		out = append(out, *l.records[plate])
	}
	return out
}

func (l *RentalLedger) Len() int { return len(l.records) }
