package service

import "errors"

var (
	ErrSpotNotFound       = errors.New("spot not found")
	ErrAlreadyOccupied    = errors.New("spot is already occupied")
	ErrInvalidVehicleType = errors.New("vehicle type not accepted by this spot")
	ErrRateNotConfigured  = errors.New("no hourly rate configured for parking type")
	ErrCustomerNotFound   = errors.New("no active rental for plate")
	ErrInvalidState       = errors.New("invalid spot state")

	ErrUnknownParkingType = errors.New("unknown parking type")
	ErrPlateAlreadyParked = errors.New("plate already has an active rental")
	ErrInvalidRate        = errors.New("rate must not be negative")
	ErrNotLoaded          = errors.New("parking service has not been loaded")
)
