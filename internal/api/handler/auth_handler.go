package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"parking_rental/internal/domain"
	"parking_rental/internal/service"
)

type AuthHandler struct {
	authService    *service.AuthService
	parkingService *service.ParkingService
}

func NewAuthHandler(as *service.AuthService, ps *service.ParkingService) *AuthHandler {
	return &AuthHandler{authService: as, parkingService: ps}
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, authResponse)
}

// POST /auth/customer
func (h *AuthHandler) CustomerLogin(c *gin.Context) {
	var dto domain.CustomerLoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.parkingService.CustomerLogin(c.Request.Context(), dto.PlateNumber)
	if err != nil {
		writeError(c, err, "customer login failed")
		return
	}
	authResponse, err := h.authService.IssueCustomerToken(record.PlateNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "customer login failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth": authResponse, "rental": record})
}
