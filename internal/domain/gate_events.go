package domain

import "encoding/json"

type GateAction string

const (
	GateActionRent   GateAction = "rent"
	GateActionSettle GateAction = "settle"
)

// GateCommand is a message published by a gate controller on the command
// queue. Timestamp is RFC3339; when empty the consumer's clock is used.
type GateCommand struct {
	CommandID   string          `json:"command_id"`
	DeviceID    string          `json:"device_id"`
	Action      GateAction      `json:"action"`
	Timestamp   string          `json:"timestamp,omitempty"`
	PlateNumber string          `json:"plate_number"`
	Floor       string          `json:"floor,omitempty"`
	SpotID      string          `json:"spot_id,omitempty"`
	VehicleType string          `json:"vehicle_type,omitempty"`
	Gate        int             `json:"gate"`
	RawPayload  json.RawMessage `json:"-"`
}
