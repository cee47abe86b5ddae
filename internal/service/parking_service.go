package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"parking_rental/internal/domain"
	"parking_rental/internal/repository"
)

// SpotNotifier receives spot events after they have been persisted.
type SpotNotifier interface {
	NotifySpotEvent(ctx context.Context, event domain.SpotEvent) error
}

// ParkingService owns the lot: spots, ledger, rates and eligibility. Every
// mutation holds mu, writes the full snapshot to the store, and rolls the
// in-memory state back if the write fails.
type ParkingService struct {
	store           repository.LotStore
	defaultDailyMax decimal.Decimal
	notifiers       []SpotNotifier
	clock           func() time.Time

	mu          sync.Mutex
	loaded      bool
	registry    *SpotRegistry
	ledger      *RentalLedger
	rates       domain.RateTable
	eligibility domain.EligibilityTable
}

func NewParkingService(store repository.LotStore, defaultDailyMax decimal.Decimal, notifiers ...SpotNotifier) *ParkingService {
	return &ParkingService{
		store:           store,
		defaultDailyMax: defaultDailyMax,
		notifiers:       notifiers,
		clock:           time.Now,
	}
}

// AddNotifier registers n for events emitted after this call.
func (s *ParkingService) AddNotifier(n SpotNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifiers = append(s.notifiers, n)
}

// Load reads the lot from the store. An empty store starts an empty lot with
// the default daily maximum and saves it.
func (s *ParkingService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		log.Printf("ParkingService: store is empty, starting a new lot (daily max %s)", s.defaultDailyMax)
		snap = &domain.LotSnapshot{
			Rates:       domain.NewRateTable(s.defaultDailyMax),
			Eligibility: domain.EligibilityTable{},
		}
		if err := s.store.Save(ctx, snap); err != nil {
			return fmt.Errorf("ParkingService.Load (initial save): %w", err)
		}
	case err != nil:
		return fmt.Errorf("ParkingService.Load: %w", err)
	}

	s.restoreLocked(snap)
	s.loaded = true
	log.Printf("ParkingService: loaded %d floor(s), %d ledger record(s)", len(snap.Floors), len(snap.Rentals))
	return nil
}

func (s *ParkingService) snapshotLocked() *domain.LotSnapshot {
	snap := &domain.LotSnapshot{
		Floors:      s.registry.floors,
		Rentals:     s.ledger.Records(),
		Rates:       s.rates,
		Eligibility: s.eligibility,
	}
	return snap.Clone()
}

func (s *ParkingService) restoreLocked(snap *domain.LotSnapshot) {
	if snap.Rates.Hourly == nil {
		snap.Rates.Hourly = make(map[domain.ParkingType]decimal.Decimal)
	}
	if snap.Eligibility == nil {
		snap.Eligibility = domain.EligibilityTable{}
	}
	s.rates = snap.Rates
	s.eligibility = snap.Eligibility
	s.registry = NewSpotRegistry(snap.Floors, s.eligibility)
	s.ledger = NewRentalLedger(snap.Rentals)
}

// commitLocked persists the current state, restoring before on failure.
func (s *ParkingService) commitLocked(ctx context.Context, before *domain.LotSnapshot) error {
	if err := s.store.Save(ctx, s.snapshotLocked()); err != nil {
		s.restoreLocked(before)
		return fmt.Errorf("ParkingService: persist lot: %w", err)
	}
	return nil
}

func (s *ParkingService) notify(ctx context.Context, events ...domain.SpotEvent) {
	s.mu.Lock()
	notifiers := slices.Clone(s.notifiers)
	s.mu.Unlock()

	for _, event := range events {
		for _, n := range notifiers {
			if err := n.NotifySpotEvent(ctx, event); err != nil {
				log.Printf("ParkingService: notifier failed for %s on %s: %v", event.Type, event.SpotID, err)
			}
		}
	}
}

func newSpotEvent(t domain.SpotEventType, spot domain.Spot, now time.Time) domain.SpotEvent {
	return domain.SpotEvent{
		EventID:     uuid.NewString(),
		Type:        t,
		Timestamp:   now.UTC(),
		Floor:       spot.Floor,
		SpotID:      spot.ID,
		ParkingType: spot.ParkingType,
		Status:      spot.Status,
	}
}

// Rent assigns the requested spot to a plate. Nothing changes unless the
// spot exists, is free, accepts the vehicle type and the lot is persisted.
func (s *ParkingService) Rent(ctx context.Context, req domain.RentRequest, now time.Time) (*domain.RentalRecord, error) {
	plate, err := domain.NormalizePlate(req.Plate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil, ErrNotLoaded
	}
	spot, ok := s.registry.FindSpot(req.Floor, req.SpotID)
	if !ok || spot.Status == domain.SpotRemoved {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s/%s", ErrSpotNotFound, req.Floor, req.SpotID)
	}
	if spot.Occupied() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOccupied, spot.ID)
	}
	if !s.eligibility.Accepts(spot.ParkingType, req.VehicleType) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s on %s spot", ErrInvalidVehicleType, req.VehicleType, spot.ParkingType)
	}
	if rec, ok := s.ledger.Get(plate); ok && rec.Active() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s at %s", ErrPlateAlreadyParked, plate, rec.SpotID)
	}

	before := s.snapshotLocked()
	if err := s.registry.Occupy(spot, req.VehicleType, plate, req.Entrance, now); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	rec := s.ledger.StartRental(plate, spot.ParkingType, req.VehicleType, req.Entrance, now)
	rec.Floor = spot.Floor
	rec.SpotID = spot.ID
	result := *rec
	event := newSpotEvent(domain.SpotEventRented, *spot, now)

	if err := s.commitLocked(ctx, before); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	log.Printf("ParkingService: %s rented %s (%s, entrance %d)", plate, result.SpotID, result.VehicleType, result.Entrance)
	event.PlateNumber = plate
	event.Gate = req.Entrance
	s.notify(ctx, event)
	return &result, nil
}

// Settle closes the rental of plate at now, frees its spot and erases the
// ledger record. The returned settlement carries the amount due. An exit
// before the recorded entry is rejected and leaves the rental open.
func (s *ParkingService) Settle(ctx context.Context, plate string, exit int, now time.Time) (*domain.Settlement, error) {
	plate, err := domain.NormalizePlate(plate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil, ErrNotLoaded
	}
	rec, err := s.ledger.CloseRental(plate)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if now.Before(rec.RentalStart.Time) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: exit %s is before entry %s", ErrInvalidState,
			now.Format(time.RFC3339), rec.RentalStart.Time.Format(time.RFC3339))
	}
	rate, ok := s.rates.Rate(rec.ParkingType)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRateNotConfigured, rec.ParkingType)
	}
	charge := ChargeBreakdown(rec.RentalStart.Time, now, rate, s.rates.DailyMax)

	before := s.snapshotLocked()
	spot, released := s.registry.Release(plate)
	s.ledger.Remove(plate)
	if err := s.commitLocked(ctx, before); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	settlement := &domain.Settlement{
		PlateNumber:   plate,
		ParkingType:   rec.ParkingType,
		VehicleType:   rec.VehicleType,
		Floor:         rec.Floor,
		SpotID:        rec.SpotID,
		Entrance:      rec.Entrance,
		Exit:          exit,
		RentalStart:   rec.RentalStart.Time,
		RentalEnd:     now,
		HoursBilled:   charge.Hours,
		HourlyRate:    rate,
		Surcharge:     charge.Surcharge,
		Amount:        charge.Amount,
		CappedAtDaily: charge.Capped,
	}
	log.Printf("ParkingService: %s settled %s, %d hour(s), amount %s", plate, rec.SpotID, charge.Hours, charge.Amount)

	if released {
		event := newSpotEvent(domain.SpotEventSettled, spot, now)
		event.PlateNumber = plate
		event.Gate = exit
		event.Amount = &settlement.Amount
		s.notify(ctx, event)
	} else {
		log.Printf("ParkingService: no spot held by %s at settlement, ledger and spots were out of sync", plate)
	}
	return settlement, nil
}

// EstimateCharge prices the rental of plate as if it were settled at now.
func (s *ParkingService) EstimateCharge(plate string, now time.Time) (*domain.Estimate, error) {
	plate, err := domain.NormalizePlate(plate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	rec, err := s.ledger.CloseRental(plate)
	if err != nil {
		return nil, err
	}
	rate, ok := s.rates.Rate(rec.ParkingType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRateNotConfigured, rec.ParkingType)
	}
	charge := ChargeBreakdown(rec.RentalStart.Time, now, rate, s.rates.DailyMax)
	return &domain.Estimate{
		PlateNumber: plate,
		AsOf:        now,
		HoursBilled: charge.Hours,
		Amount:      charge.Amount,
	}, nil
}

// CustomerLogin returns the ledger record of plate, creating an empty one
// for a plate seen for the first time.
func (s *ParkingService) CustomerLogin(ctx context.Context, plate string) (*domain.RentalRecord, error) {
	plate, err := domain.NormalizePlate(plate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	before := s.snapshotLocked()
	rec, created := s.ledger.GetOrCreate(plate)
	result := *rec
	if created {
		if err := s.commitLocked(ctx, before); err != nil {
			return nil, err
		}
		log.Printf("ParkingService: new customer %s", plate)
	}
	return &result, nil
}

// ListAvailable returns the free spots that accept vt, optionally limited to one floor.
func (s *ParkingService) ListAvailable(floor string, vt domain.VehicleType) []domain.Spot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	spots := slices.Collect(s.registry.Available(floor, vt))
	if spots == nil {
		spots = []domain.Spot{}
	}
	return spots
}

// Rentals returns every ledger record.
func (s *ParkingService) Rentals() []domain.RentalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	return s.ledger.Records()
}
