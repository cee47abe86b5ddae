package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type SpotStatus string

const (
	SpotAvailable SpotStatus = "available"
	SpotOccupied  SpotStatus = "occupied"
	SpotRemoved   SpotStatus = "removed"
)

func (s SpotStatus) Valid() bool {
	switch s {
	case SpotAvailable, SpotOccupied, SpotRemoved:
		return true
	}
	return false
}

// Spot is a single parking space. ID is floor+sequence ("B1_3") and stays
// stable for the life of the floor, removed spots included.
type Spot struct {
	Floor               string      `json:"floor"`
	ID                  string      `json:"id"`
	ParkingType         ParkingType `json:"parking_type"`
	Status              SpotStatus  `json:"status"`
	AssignedVehicleType VehicleType `json:"assigned_vehicle_type,omitempty"`
	OccupantPlate       string      `json:"occupant_plate,omitempty"`
	RentalStart         null.Time   `json:"rental_start"`
	Entrance            int         `json:"entrance,omitempty"`
}

func (s *Spot) Occupied() bool { return s.Status == SpotOccupied }

// Vacate clears the occupant fields and makes the spot available again.
func (s *Spot) Vacate() {
	s.Status = SpotAvailable
	s.AssignedVehicleType = ""
	s.OccupantPlate = ""
	s.RentalStart = null.Time{}
	s.Entrance = 0
}

// Occupy marks the spot as rented by plate starting at now.
func (s *Spot) Occupy(vt VehicleType, plate string, entrance int, now time.Time) {
	s.Status = SpotOccupied
	s.AssignedVehicleType = vt
	s.OccupantPlate = plate
	s.RentalStart = null.TimeFrom(now)
	s.Entrance = entrance
}

// Floor is an ordered list of spots. NextSeq is the sequence the next added
// spot receives; it never goes backwards.
type Floor struct {
	Name    string `json:"name"`
	NextSeq int    `json:"next_seq"`
	Spots   []Spot `json:"spots"`
}

type SpotDTO struct {
	ParkingType string `json:"parking_type" binding:"required"`
}

type AvailableSpotsFilterDTO struct {
	Floor       string `form:"floor"`
	VehicleType string `form:"vehicle_type"`
}
