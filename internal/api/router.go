package api

import (
	"github.com/gin-gonic/gin"

	"parking_rental/internal/api/handler"
	"parking_rental/internal/api/middleware"
	"parking_rental/internal/domain"
	"parking_rental/internal/service"
)

func SetupRouter(as *service.AuthService, ps *service.ParkingService, authMw *middleware.AuthMiddleware,
	lprService *service.LPRService, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if wsManager != nil {
		wsHandler := handler.NewWebSocketHandler(wsManager)
		r.GET("/ws", wsHandler.HandleWebSocket)
	}

	authHandler := handler.NewAuthHandler(as, ps)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/customer", authHandler.CustomerLogin)
	}

	admin := authMw.AuthorizeRole(domain.RoleAdmin)
	staff := authMw.AuthorizeRole(domain.RoleAdmin, domain.RoleOperator)

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		spotH := handler.NewSpotHandler(ps)
		v1.GET("/spots/available", spotH.ListAvailable)

		floorRoutes := v1.Group("/floors")
		floorRoutes.Use(admin)
		{
			floorRoutes.GET("", spotH.ListFloors)
			floorRoutes.POST("/:floor/spots", spotH.AddSpot)
			floorRoutes.PUT("/:floor/spots/:spot_id", spotH.UpdateSpot)
			floorRoutes.DELETE("/:floor/spots/:spot_id", spotH.RemoveSpot)
			floorRoutes.POST("/:floor/spots/:spot_id/clear", spotH.ClearSpot)
		}

		catalogH := handler.NewCatalogHandler(ps)
		v1.GET("/rates", catalogH.GetRates)
		v1.PUT("/rates/daily-max", admin, catalogH.SetDailyMax)
		v1.PUT("/rates/:parking_type", admin, catalogH.SetRate)
		v1.GET("/eligibility", catalogH.GetEligibility)
		v1.PUT("/eligibility/:parking_type", admin, catalogH.SetEligibility)

		rentalH := handler.NewRentalHandler(ps)
		rentalRoutes := v1.Group("/rentals")
		{
			rentalRoutes.GET("", staff, rentalH.ListRentals)
			rentalRoutes.POST("", rentalH.Rent)
			rentalRoutes.POST("/settle", rentalH.Settle)
			rentalRoutes.GET("/:plate/estimate", rentalH.Estimate)
		}

		if lprService != nil {
			lprH := handler.NewLPRHandler(lprService)
			lprRoutes := v1.Group("/lpr")
			lprRoutes.Use(staff)
			{
				lprRoutes.POST("/process-image", lprH.ProcessImage)
			}
		}
	}
	return r
}
