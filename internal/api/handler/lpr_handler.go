package handler

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_rental/internal/domain"
	"parking_rental/internal/service"
)

type LPRHandler struct {
	lprService *service.LPRService
}

func NewLPRHandler(lprService *service.LPRService) *LPRHandler {
	return &LPRHandler{lprService: lprService}
}

// POST /api/v1/lpr/process-image
func (h *LPRHandler) ProcessImage(c *gin.Context) {
	var req domain.LPRRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	imageBytes, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil || len(imageBytes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is not a valid image"})
		return
	}
	log.Printf("LPRHandler: received %d image bytes", len(imageBytes))

	plate, confidence, err := h.lprService.ProcessImageForLPR(c.Request.Context(), imageBytes)
	switch {
	case errors.Is(err, service.ErrPlateNotDetected):
		c.JSON(http.StatusOK, domain.LPRResponseDTO{ErrorMessage: err.Error()})
		return
	case errors.Is(err, service.ErrLPRUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "plate recognition failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, domain.LPRResponseDTO{
		DetectedPlate: plate,
		Confidence:    confidence,
	})
}
