package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_rental/internal/domain"
	"parking_rental/internal/service"
)

type SpotHandler struct {
	parkingService *service.ParkingService
}

func NewSpotHandler(ps *service.ParkingService) *SpotHandler {
	return &SpotHandler{parkingService: ps}
}

// GET /spots/available?floor=&vehicle_type=
func (h *SpotHandler) ListAvailable(c *gin.Context) {
	var filter domain.AvailableSpotsFilterDTO
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var vt domain.VehicleType
	if filter.VehicleType != "" {
		parsed, err := domain.ParseVehicleType(filter.VehicleType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		vt = parsed
	}
	c.JSON(http.StatusOK, h.parkingService.ListAvailable(filter.Floor, vt))
}

// GET /floors
func (h *SpotHandler) ListFloors(c *gin.Context) {
	c.JSON(http.StatusOK, h.parkingService.Floors())
}

// POST /floors/:floor/spots
func (h *SpotHandler) AddSpot(c *gin.Context) {
	pt, ok := bindSpotType(c)
	if !ok {
		return
	}
	spot, err := h.parkingService.AddSpot(c.Request.Context(), c.Param("floor"), pt)
	if err != nil {
		writeError(c, err, "could not add spot")
		return
	}
	c.JSON(http.StatusCreated, spot)
}

// PUT /floors/:floor/spots/:spot_id
func (h *SpotHandler) UpdateSpot(c *gin.Context) {
	pt, ok := bindSpotType(c)
	if !ok {
		return
	}
	spot, err := h.parkingService.SetSpotType(c.Request.Context(), c.Param("floor"), c.Param("spot_id"), pt)
	if err != nil {
		writeError(c, err, "could not update spot")
		return
	}
	c.JSON(http.StatusOK, spot)
}

// DELETE /floors/:floor/spots/:spot_id
func (h *SpotHandler) RemoveSpot(c *gin.Context) {
	if err := h.parkingService.RemoveSpot(c.Request.Context(), c.Param("floor"), c.Param("spot_id")); err != nil {
		writeError(c, err, "could not remove spot")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /floors/:floor/spots/:spot_id/clear
func (h *SpotHandler) ClearSpot(c *gin.Context) {
	spot, err := h.parkingService.ClearSpot(c.Request.Context(), c.Param("floor"), c.Param("spot_id"))
	if err != nil {
		writeError(c, err, "could not clear spot")
		return
	}
	c.JSON(http.StatusOK, spot)
}

func bindSpotType(c *gin.Context) (domain.ParkingType, bool) {
	var dto domain.SpotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	pt, err := domain.ParseParkingType(dto.ParkingType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return pt, true
}
