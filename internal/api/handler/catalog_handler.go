package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_rental/internal/domain"
	"parking_rental/internal/service"
)

// CatalogHandler edits the rate and eligibility tables.
type CatalogHandler struct {
	parkingService *service.ParkingService
}

func NewCatalogHandler(ps *service.ParkingService) *CatalogHandler {
	return &CatalogHandler{parkingService: ps}
}

// GET /rates
func (h *CatalogHandler) GetRates(c *gin.Context) {
	c.JSON(http.StatusOK, h.parkingService.Rates())
}

// PUT /rates/:parking_type
func (h *CatalogHandler) SetRate(c *gin.Context) {
	pt, err := domain.ParseParkingType(c.Param("parking_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var dto domain.RateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.parkingService.SetRate(c.Request.Context(), pt, *dto.HourlyRate); err != nil {
		writeError(c, err, "could not set rate")
		return
	}
	c.JSON(http.StatusOK, h.parkingService.Rates())
}

// PUT /rates/daily-max
func (h *CatalogHandler) SetDailyMax(c *gin.Context) {
	var dto domain.DailyMaxDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.parkingService.SetDailyMax(c.Request.Context(), *dto.DailyMax); err != nil {
		writeError(c, err, "could not set daily maximum")
		return
	}
	c.JSON(http.StatusOK, h.parkingService.Rates())
}

// GET /eligibility
func (h *CatalogHandler) GetEligibility(c *gin.Context) {
	c.JSON(http.StatusOK, h.parkingService.Eligibility())
}

// PUT /eligibility/:parking_type
func (h *CatalogHandler) SetEligibility(c *gin.Context) {
	pt, err := domain.ParseParkingType(c.Param("parking_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var dto domain.EligibilityDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vts := make([]domain.VehicleType, 0, len(dto.VehicleTypes))
	for _, raw := range dto.VehicleTypes {
		vt, err := domain.ParseVehicleType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		vts = append(vts, vt)
	}
	if err := h.parkingService.SetEligibility(c.Request.Context(), pt, vts); err != nil {
		writeError(c, err, "could not set eligibility")
		return
	}
	c.JSON(http.StatusOK, h.parkingService.Eligibility())
}
