package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-pms/controllers"
	"hotel-pms/middleware"
	"hotel-pms/realtime"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	hc *controllers.HotelController,
	bc *controllers.BookingController,
	oc *controllers.OrderController,
	hub *realtime.Hub,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.Static("/uploads", "./uploads")

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Actor"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ws", hub.Handle)

	api := r.Group("/api")
	{
		hotels := api.Group("/hotels")
		{
			hotels.GET("", hc.GetHotels)
			hotels.POST("", hc.CreateHotel)
			hotels.GET("/:id", hc.GetHotel)
			hotels.PUT("/:id", hc.UpdateHotel)
			hotels.DELETE("/:id", hc.DeleteHotel)

			hotels.GET("/:id/availability", hc.GetAvailability)

			hotels.POST("/:id/categories", hc.AddCategory)
			hotels.PUT("/:id/categories/:categoryId", hc.UpdateCategory)
			hotels.DELETE("/:id/categories/:categoryId", hc.DeleteCategory)

			hotels.POST("/:id/categories/:categoryId/rooms", hc.AddRoom)
			hotels.PUT("/:id/categories/:categoryId/rooms/:roomId", hc.UpdateRoom)
			hotels.DELETE("/:id/categories/:categoryId/rooms/:roomId", hc.DeleteRoom)
		}

		bookings := api.Group("/bookings")
		{
			// fixed paths must stay ahead of /:id
			bookings.GET("/stats", bc.GetStats)
			bookings.GET("/availability", bc.CheckAvailability)

			bookings.GET("", bc.GetBookings)
			bookings.POST("", bc.CreateBooking)
			bookings.GET("/:id", bc.GetBooking)
			bookings.PUT("/:id", bc.UpdateBooking)
			bookings.DELETE("/:id", bc.DeleteBooking)
			bookings.POST("/:id/cancel", bc.CancelBooking)
			bookings.POST("/:id/checkin", bc.CheckIn)
			bookings.POST("/:id/checkout", bc.CheckOut)
		}

		orders := api.Group("/orders")
		{
			orders.GET("", oc.GetOrders)
			orders.POST("", oc.CreateOrder)
		}
	}

	return r
}
