package service

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"parking_rental/internal/domain"
)

// SpotRegistry is the ordered set of floors and their spots. It is not safe
// for concurrent use; ParkingService serializes access.
type SpotRegistry struct {
	floors      []domain.Floor
	eligibility domain.EligibilityTable
}

// NewSpotRegistry takes ownership of floors. The eligibility table is shared
// with the caller so later edits are seen by Available.
func NewSpotRegistry(floors []domain.Floor, eligibility domain.EligibilityTable) *SpotRegistry {
	return &SpotRegistry{floors: floors, eligibility: eligibility}
}

func (r *SpotRegistry) floor(name string) *domain.Floor {
	for i := range r.floors {
		if r.floors[i].Name == name {
			return &r.floors[i]
		}
	}
	return nil
}

// FindSpot returns the spot with id on floor, removed spots included.
func (r *SpotRegistry) FindSpot(floor, id string) (*domain.Spot, bool) {
	f := r.floor(floor)
	if f == nil {
		return nil, false
	}
	for i := range f.Spots {
		if f.Spots[i].ID == id {
			return &f.Spots[i], true
		}
	}
	return nil, false
}

// Available yields free spots in floor order, then insertion order. An empty
// floor matches every floor; an empty vehicle type skips the eligibility check.
func (r *SpotRegistry) Available(floor string, vt domain.VehicleType) iter.Seq[domain.Spot] {
	return func(yield func(domain.Spot) bool) {
		for i := range r.floors {
			f := &r.floors[i]
			if floor != "" && f.Name != floor {
				continue
			}
			for _, s := range f.Spots {
				if s.Status != domain.SpotAvailable {
					continue
				}
				if vt != "" && !r.eligibility.Accepts(s.ParkingType, vt) {
					continue
				}
				if !yield(s) {
					return
				}
			}
		}
	}
}

// Occupy assigns spot to plate.
func (r *SpotRegistry) Occupy(spot *domain.Spot, vt domain.VehicleType, plate string, entrance int, now time.Time) error {
	if spot.Status != domain.SpotAvailable {
		return fmt.Errorf("%w: %s is %s", ErrInvalidState, spot.ID, spot.Status)
	}
	if !r.eligibility.Accepts(spot.ParkingType, vt) {
		return fmt.Errorf("%w: %s does not accept %s", ErrInvalidState, spot.ID, vt)
	}
	spot.Occupy(vt, plate, entrance, now)
	return nil
}

// Release frees the spot held by plate and reports whether one was found.
func (r *SpotRegistry) Release(plate string) (domain.Spot, bool) {
	for i := range r.floors {
		spots := r.floors[i].Spots
		for j := range spots {
			if spots[j].Occupied() && spots[j].OccupantPlate == plate {
				spots[j].Vacate()
				return spots[j], true
			}
		}
	}
	return domain.Spot{}, false
}

// SpotOf returns the spot currently held by plate.
func (r *SpotRegistry) SpotOf(plate string) (domain.Spot, bool) {
	for i := range r.floors {
		for _, s := range r.floors[i].Spots {
			if s.Occupied() && s.OccupantPlate == plate {
				return s, true
			}
		}
	}
	return domain.Spot{}, false
}

// AddSpot appends a new available spot to floor, creating the floor on first use.
func (r *SpotRegistry) AddSpot(floor string, pt domain.ParkingType) (domain.Spot, error) {
	if !r.eligibility.Has(pt) {
		return domain.Spot{}, fmt.Errorf("%w: %s", ErrUnknownParkingType, pt)
	}
	f := r.floor(floor)
	if f == nil {
		r.floors = append(r.floors, domain.Floor{Name: floor, NextSeq: 1})
		f = &r.floors[len(r.floors)-1]
	}
	if f.NextSeq < 1 {
		f.NextSeq = 1
	}
	spot := domain.Spot{
		Floor:       floor,
		ID:          fmt.Sprintf("%s_%d", floor, f.NextSeq),
		ParkingType: pt,
		Status:      domain.SpotAvailable,
	}
	f.NextSeq++
	f.Spots = append(f.Spots, spot)
	return spot, nil
}

// SetSpotType changes the parking type of a free spot. A removed spot is
// restored to available.
func (r *SpotRegistry) SetSpotType(floor, id string, pt domain.ParkingType) (domain.Spot, error) {
	spot, ok := r.FindSpot(floor, id)
	if !ok {
		return domain.Spot{}, fmt.Errorf("%w: %s/%s", ErrSpotNotFound, floor, id)
	}
	if spot.Occupied() {
		return domain.Spot{}, fmt.Errorf("%w: %s", ErrAlreadyOccupied, id)
	}
	if !r.eligibility.Has(pt) {
		return domain.Spot{}, fmt.Errorf("%w: %s", ErrUnknownParkingType, pt)
	}
	spot.ParkingType = pt
	spot.Status = domain.SpotAvailable
	return *spot, nil
}

// RemoveSpot soft-deletes a free spot. Its id is never handed out again.
func (r *SpotRegistry) RemoveSpot(floor, id string) (domain.Spot, error) {
	spot, ok := r.FindSpot(floor, id)
	if !ok || spot.Status == domain.SpotRemoved {
		return domain.Spot{}, fmt.Errorf("%w: %s/%s", ErrSpotNotFound, floor, id)
	}
	if spot.Occupied() {
		return domain.Spot{}, fmt.Errorf("%w: %s", ErrAlreadyOccupied, id)
	}
	spot.Vacate()
	spot.Status = domain.SpotRemoved
	return *spot, nil
}

// ClearSpot frees a spot without touching the ledger and returns the plate
// that held it, if any.
func (r *SpotRegistry) ClearSpot(floor, id string) (domain.Spot, string, error) {
	spot, ok := r.FindSpot(floor, id)
	if !ok || spot.Status == domain.SpotRemoved {
		return domain.Spot{}, "", fmt.Errorf("%w: %s/%s", ErrSpotNotFound, floor, id)
	}
	plate := spot.OccupantPlate
	if spot.Occupied() {
		spot.Vacate()
	}
	return *spot, plate, nil
}

// Floors returns a copy of every floor.
func (r *SpotRegistry) Floors() []domain.Floor {
	out := make([]domain.Floor, len(r.floors))
	for i, f := range r.floors {
		out[i] = domain.Floor{Name: f.Name, NextSeq: f.NextSeq, Spots: slices.Clone(f.Spots)}
	}
	return out
}

// Spots returns a copy of the spots on floor.
func (r *SpotRegistry) Spots(floor string) ([]domain.Spot, bool) {
	f := r.floor(floor)
	if f == nil {
		return nil, false
	}
	return slices.Clone(f.Spots), true
}
