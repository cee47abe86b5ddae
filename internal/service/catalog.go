package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"parking_rental/internal/domain"
)

// catalogEdit runs fn under the lock and persists the result. fn returns
// the spot events to publish once the change is saved.
func (s *ParkingService) catalogEdit(ctx context.Context, fn func() ([]domain.SpotEvent, error)) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	before := s.snapshotLocked()
	events, err := fn()
	if err != nil {
		s.restoreLocked(before)
		s.mu.Unlock()
		return err
	}
	if err := s.commitLocked(ctx, before); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notify(ctx, events...)
	return nil
}

func (s *ParkingService) AddSpot(ctx context.Context, floor string, pt domain.ParkingType) (*domain.Spot, error) {
	floor, err := domain.ParseFloorName(floor)
	if err != nil {
		return nil, err
	}
	var spot domain.Spot
	err = s.catalogEdit(ctx, func() ([]domain.SpotEvent, error) {
		var err error
		spot, err = s.registry.AddSpot(floor, pt)
		if err != nil {
			return nil, err
		}
		return []domain.SpotEvent{newSpotEvent(domain.SpotEventAdded, spot, s.clock())}, nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("ParkingService: added %s spot %s", pt, spot.ID)
	return &spot, nil
}

// SetSpotType retypes a free spot, restoring it if it was removed.
func (s *ParkingService) SetSpotType(ctx context.Context, floor, id string, pt domain.ParkingType) (*domain.Spot, error) {
	var spot domain.Spot
	err := s.catalogEdit(ctx, func() ([]domain.SpotEvent, error) {
		var err error
		spot, err = s.registry.SetSpotType(floor, id, pt)
		if err != nil {
			return nil, err
		}
		return []domain.SpotEvent{newSpotEvent(domain.SpotEventModified, spot, s.clock())}, nil
	})
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

func (s *ParkingService) RemoveSpot(ctx context.Context, floor, id string) error {
	return s.catalogEdit(ctx, func() ([]domain.SpotEvent, error) {
		spot, err := s.registry.RemoveSpot(floor, id)
		if err != nil {
			return nil, err
		}
		return []domain.SpotEvent{newSpotEvent(domain.SpotEventRemoved, spot, s.clock())}, nil
	})
}

// ClearSpot frees a spot administratively. The ledger record of the evicted
// plate is left alone; settling it later still bills the customer.
func (s *ParkingService) ClearSpot(ctx context.Context, floor, id string) (*domain.Spot, error) {
	var spot domain.Spot
	err := s.catalogEdit(ctx, func() ([]domain.SpotEvent, error) {
		var plate string
		var err error
		spot, plate, err = s.registry.ClearSpot(floor, id)
		if err != nil {
			return nil, err
		}
		event := newSpotEvent(domain.SpotEventCleared, spot, s.clock())
		event.PlateNumber = plate
		return []domain.SpotEvent{event}, nil
	})
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

// SetRate sets the hourly rate of a known parking type.
func (s *ParkingService) SetRate(ctx context.Context, pt domain.ParkingType, rate decimal.Decimal) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidRate, rate)
	}
	return s.catalogEdit(ctx, func() ([]domain.SpotEvent, error) {
		if !s.eligibility.Has(pt) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParkingType, pt)
		}
		s.rates.Hourly[pt] = rate
		return nil, nil
	})
}

func (s *ParkingService) SetDailyMax(ctx context.Context, dailyMax decimal.Decimal) error {
	if dailyMax.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidRate, dailyMax)
	}
	return s.catalogEdit(ctx, func() ([]domain.SpotEvent, error) {
		s.rates.DailyMax = dailyMax
		return nil, nil
	})
}

// SetEligibility replaces the vehicle types accepted by pt, declaring pt if
// it is new. Spots already occupied keep their occupant.
func (s *ParkingService) SetEligibility(ctx context.Context, pt domain.ParkingType, vts []domain.VehicleType) error {
	return s.catalogEdit(ctx, func() ([]domain.SpotEvent, error) {
		s.eligibility.Set(pt, vts)
		return nil, nil
	})
}

func (s *ParkingService) Floors() []domain.Floor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return s.registry.Floors()
}

func (s *ParkingService) Rates() domain.RateTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rates.Clone()
}

func (s *ParkingService) Eligibility() []domain.EligibilityView {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]domain.EligibilityView, 0, len(s.eligibility))
	for _, pt := range s.eligibility.ParkingTypes() {
		views = append(views, domain.EligibilityView{ParkingType: pt, VehicleTypes: s.eligibility.VehicleTypes(pt)})
	}
	return views
}
