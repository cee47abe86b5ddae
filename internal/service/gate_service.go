package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"parking_rental/internal/domain"
)

var ErrMalformedCommand = errors.New("malformed gate command")

// GateService turns commands from the gate controllers into rentals and
// settlements.
type GateService struct {
	parkingService *ParkingService
	clock          func() time.Time
}

func NewGateService(ps *ParkingService) *GateService {
	return &GateService{parkingService: ps, clock: time.Now}
}

// HandleGateCommand processes one queue message body. Errors for which
// IsPermanent is true will fail again on redelivery.
func (s *GateService) HandleGateCommand(ctx context.Context, body string) error {
	var cmd domain.GateCommand
	if err := json.Unmarshal([]byte(body), &cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	cmd.RawPayload = json.RawMessage(body)

	now := s.clock()
	if cmd.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, cmd.Timestamp)
		if err != nil {
			return fmt.Errorf("%w: timestamp %q: %v", ErrMalformedCommand, cmd.Timestamp, err)
		}
		now = ts
	}
	log.Printf("GateService: %s from %s for %s (command %s)", cmd.Action, cmd.DeviceID, cmd.PlateNumber, cmd.CommandID)

	switch cmd.Action {
	case domain.GateActionRent:
		vt, err := domain.ParseVehicleType(cmd.VehicleType)
		if err != nil {
			return err
		}
		_, err = s.parkingService.Rent(ctx, domain.RentRequest{
			Floor:       cmd.Floor,
			SpotID:      cmd.SpotID,
			VehicleType: vt,
			Plate:       cmd.PlateNumber,
			Entrance:    cmd.Gate,
		}, now)
		return err
	case domain.GateActionSettle:
		settlement, err := s.parkingService.Settle(ctx, cmd.PlateNumber, cmd.Gate, now)
		if err != nil {
			return err
		}
		log.Printf("GateService: %s owes %s", settlement.PlateNumber, settlement.Amount)
		return nil
	default:
		return fmt.Errorf("%w: unknown action %q", ErrMalformedCommand, cmd.Action)
	}
}

var permanentErrors = []error{
	ErrMalformedCommand,
	ErrSpotNotFound,
	ErrAlreadyOccupied,
	ErrInvalidVehicleType,
	ErrRateNotConfigured,
	ErrCustomerNotFound,
	ErrPlateAlreadyParked,
	ErrInvalidState,
	domain.ErrInvalidPlate,
	domain.ErrInvalidIdentifier,
}

// IsPermanent reports whether err is a rejection of the command itself
// rather than an infrastructure failure.
func IsPermanent(err error) bool {
	for _, target := range permanentErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
