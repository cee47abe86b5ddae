package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parking_rental/internal/domain"
	"parking_rental/internal/service"
)

type RentalHandler struct {
	parkingService *service.ParkingService
	clock          func() time.Time
}

func NewRentalHandler(ps *service.ParkingService) *RentalHandler {
	return &RentalHandler{parkingService: ps, clock: time.Now}
}

// POST /rentals
func (h *RentalHandler) Rent(c *gin.Context) {
	var dto domain.RentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	if !customerMayAct(c, dto.PlateNumber) {
		c.JSON(http.StatusForbidden, gin.H{"error": "customers may only rent for their own plate"})
		return
	}
	vt, err := domain.ParseVehicleType(dto.VehicleType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	now, err := callerTime(c, dto.EntryTime, h.clock())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry_time must be RFC3339"})
		return
	}

	record, err := h.parkingService.Rent(c.Request.Context(), domain.RentRequest{
		Floor:       dto.Floor,
		SpotID:      dto.SpotID,
		VehicleType: vt,
		Plate:       dto.PlateNumber,
		Entrance:    dto.Entrance,
	}, now)
	if err != nil {
		writeError(c, err, "could not rent spot")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// POST /rentals/settle
func (h *RentalHandler) Settle(c *gin.Context) {
	var dto domain.SettleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}
	if !customerMayAct(c, dto.PlateNumber) {
		c.JSON(http.StatusForbidden, gin.H{"error": "customers may only settle their own plate"})
		return
	}
	now, err := callerTime(c, dto.ExitTime, h.clock())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exit_time must be RFC3339"})
		return
	}

	settlement, err := h.parkingService.Settle(c.Request.Context(), dto.PlateNumber, dto.Exit, now)
	if err != nil {
		writeError(c, err, "could not settle rental")
		return
	}
	c.JSON(http.StatusOK, settlement)
}

// GET /rentals/:plate/estimate
func (h *RentalHandler) Estimate(c *gin.Context) {
	plate := c.Param("plate")
	if !customerMayAct(c, plate) {
		c.JSON(http.StatusForbidden, gin.H{"error": "customers may only view their own rental"})
		return
	}
	estimate, err := h.parkingService.EstimateCharge(plate, h.clock())
	if err != nil {
		writeError(c, err, "could not estimate charge")
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// GET /rentals
func (h *RentalHandler) ListRentals(c *gin.Context) {
	c.JSON(http.StatusOK, h.parkingService.Rentals())
}
