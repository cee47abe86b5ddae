package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SpotEventType string

const (
	SpotEventRented   SpotEventType = "spot_rented"
	SpotEventSettled  SpotEventType = "spot_settled"
	SpotEventCleared  SpotEventType = "spot_cleared"
	SpotEventAdded    SpotEventType = "spot_added"
	SpotEventModified SpotEventType = "spot_modified"
	SpotEventRemoved  SpotEventType = "spot_removed"
)

// SpotEvent is fanned out to the websocket feed, the event bus and the gate
// controllers after a change has been persisted.
type SpotEvent struct {
	EventID     string           `json:"event_id"`
	Type        SpotEventType    `json:"event_type"`
	Timestamp   time.Time        `json:"timestamp"`
	Floor       string           `json:"floor"`
	SpotID      string           `json:"spot_id"`
	ParkingType ParkingType      `json:"parking_type,omitempty"`
	Status      SpotStatus       `json:"status"`
	PlateNumber string           `json:"plate_number,omitempty"`
	Gate        int              `json:"gate,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}
