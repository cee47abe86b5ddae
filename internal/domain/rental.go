package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"
)

var ErrInvalidPlate = errors.New("invalid plate number")

var platePattern = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)

// NormalizePlate removes spaces and dashes and upper-cases the plate.
func NormalizePlate(value string) (string, error) {
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "-", "")
	value = strings.ToUpper(value)
	if !platePattern.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlate, value)
	}
	return value, nil
}

// RentalRecord is the active-or-pending-settlement state of one plate.
// A freshly created record has every field zero.
type RentalRecord struct {
	PlateNumber string          `json:"plate_number"`
	ParkingType ParkingType     `json:"parking_type,omitempty"`
	VehicleType VehicleType     `json:"vehicle_type,omitempty"`
	Floor       string          `json:"floor,omitempty"`
	SpotID      string          `json:"spot_id,omitempty"`
	Entrance    int             `json:"entrance"`
	Exit        null.Int        `json:"exit"`
	RentalStart null.Time       `json:"rental_start"`
	RentalEnd   null.Time       `json:"rental_end"`
	Payment     decimal.Decimal `json:"payment"`
}

// Active reports whether a rental has started and not been closed.
func (r *RentalRecord) Active() bool {
	return r.RentalStart.Valid && !r.RentalEnd.Valid
}

// Settlement is the receipt produced when a rental is closed.
type Settlement struct {
	PlateNumber   string          `json:"plate_number"`
	ParkingType   ParkingType     `json:"parking_type"`
	VehicleType   VehicleType     `json:"vehicle_type"`
	Floor         string          `json:"floor,omitempty"`
	SpotID        string          `json:"spot_id,omitempty"`
	Entrance      int             `json:"entrance"`
	Exit          int             `json:"exit"`
	RentalStart   time.Time       `json:"rental_start"`
	RentalEnd     time.Time       `json:"rental_end"`
	HoursBilled   int64           `json:"hours_billed"`
	HourlyRate    decimal.Decimal `json:"hourly_rate"`
	Surcharge     decimal.Decimal `json:"surcharge"`
	Amount        decimal.Decimal `json:"amount"`
	CappedAtDaily bool            `json:"capped_at_daily"`
}

// Estimate is a live charge estimate for a rental still in progress.
type Estimate struct {
	PlateNumber string          `json:"plate_number"`
	AsOf        time.Time       `json:"as_of"`
	HoursBilled int64           `json:"hours_billed"`
	Amount      decimal.Decimal `json:"amount"`
}

// RentRequest carries rent arguments into the service. The plate is
// normalized by the service; identifiers are already parsed.
type RentRequest struct {
	Floor       string
	SpotID      string
	VehicleType VehicleType
	Plate       string
	Entrance    int
}

type RentDTO struct {
	Floor       string `json:"floor" binding:"required"`
	SpotID      string `json:"spot_id" binding:"required"`
	VehicleType string `json:"vehicle_type" binding:"required"`
	PlateNumber string `json:"plate_number" binding:"required"`
	Entrance    int    `json:"entrance" binding:"required,min=1"`
	EntryTime   string `json:"entry_time,omitempty"` // RFC3339, staff only
}

type SettleDTO struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	Exit        int    `json:"exit" binding:"required,min=1"`
	ExitTime    string `json:"exit_time,omitempty"` // RFC3339, staff only
}
