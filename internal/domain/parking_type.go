package domain

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")

var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,31}$`)

// ParkingType is a category of spot (Compact, Handicapped, Motorcycle...).
type ParkingType string

// VehicleType is a category of vehicle (Car, Van, Truck...).
type VehicleType string

func ParseParkingType(s string) (ParkingType, error) {
	s = strings.TrimSpace(s)
	if !identifierPattern.MatchString(s) {
		return "", fmt.Errorf("%w: parking type %q", ErrInvalidIdentifier, s)
	}
	return ParkingType(s), nil
}

// ParseFloorName validates a floor name ("B1", "L2").
func ParseFloorName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !identifierPattern.MatchString(s) {
		return "", fmt.Errorf("%w: floor %q", ErrInvalidIdentifier, s)
	}
	return s, nil
}

func ParseVehicleType(s string) (VehicleType, error) {
	s = strings.TrimSpace(s)
	if !identifierPattern.MatchString(s) {
		return "", fmt.Errorf("%w: vehicle type %q", ErrInvalidIdentifier, s)
	}
	return VehicleType(s), nil
}

// RateTable holds the hourly rate per parking type and the global daily cap.
type RateTable struct {
	Hourly   map[ParkingType]decimal.Decimal `json:"hourly"`
	DailyMax decimal.Decimal                 `json:"daily_max"`
}

func NewRateTable(dailyMax decimal.Decimal) RateTable {
	return RateTable{Hourly: make(map[ParkingType]decimal.Decimal), DailyMax: dailyMax}
}

func (t RateTable) Rate(pt ParkingType) (decimal.Decimal, bool) {
	r, ok := t.Hourly[pt]
	return r, ok
}

func (t RateTable) Clone() RateTable {
	c := RateTable{Hourly: make(map[ParkingType]decimal.Decimal, len(t.Hourly)), DailyMax: t.DailyMax}
	for k, v := range t.Hourly {
		c.Hourly[k] = v
	}
	return c
}

// EligibilityTable maps a parking type to the vehicle types it accepts.
type EligibilityTable map[ParkingType]map[VehicleType]struct{}

func (e EligibilityTable) Has(pt ParkingType) bool {
	_, ok := e[pt]
	return ok
}

func (e EligibilityTable) Accepts(pt ParkingType, vt VehicleType) bool {
	set, ok := e[pt]
	if !ok {
		return false
	}
	_, ok = set[vt]
	return ok
}

// Set replaces the accepted vehicle types of pt. Duplicates collapse.
func (e EligibilityTable) Set(pt ParkingType, vts []VehicleType) {
	set := make(map[VehicleType]struct{}, len(vts))
	for _, vt := range vts {
		set[vt] = struct{}{}
	}
	e[pt] = set
}

func (e EligibilityTable) VehicleTypes(pt ParkingType) []VehicleType {
	out := make([]VehicleType, 0, len(e[pt]))
	for vt := range e[pt] {
		out = append(out, vt)
	}
	slices.Sort(out)
	return out
}

func (e EligibilityTable) ParkingTypes() []ParkingType {
	out := make([]ParkingType, 0, len(e))
	for pt := range e {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (e EligibilityTable) Clone() EligibilityTable {
	c := make(EligibilityTable, len(e))
	for pt := range e {
		c.Set(pt, e.VehicleTypes(pt))
	}
	return c
}

type RateDTO struct {
	HourlyRate *decimal.Decimal `json:"hourly_rate" binding:"required"`
}

type DailyMaxDTO struct {
	DailyMax *decimal.Decimal `json:"daily_max" binding:"required"`
}

type EligibilityDTO struct {
	VehicleTypes []string `json:"vehicle_types" binding:"required,min=1"`
}

// EligibilityView is the JSON form of one EligibilityTable row.
type EligibilityView struct {
	ParkingType  ParkingType   `json:"parking_type"`
	VehicleTypes []VehicleType `json:"vehicle_types"`
}
