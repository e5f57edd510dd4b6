package router

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/controllers"
	"github.com/yeremiapane/cleaning-service-app/middlewares"
	"github.com/yeremiapane/cleaning-service-app/models"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// File bukti/keluhan dilayani statis; hanya file gambar yang boleh diakses
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			ext := strings.ToLower(filepath.Ext(c.Request.URL.Path))
			if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}
		c.Next()
	})
	r.Static("/uploads", "public/uploads")

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// Rate limiter global per IP; didaftarkan sebelum route group supaya
	// ikut di chain semua route
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	customerCtrl := controllers.NewCustomerBookingController(db)
	cleanerBookingCtrl := controllers.NewCleanerBookingController(db)
	adminBookingCtrl := controllers.NewAdminBookingController(db)
	scheduleCtrl := controllers.NewScheduleController(db)
	cleanerCtrl := controllers.NewCleanerController(db)
	serviceCtrl := controllers.NewServiceController(db)
	dashboardCtrl := controllers.NewDashboardController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES
	// ----------------------------------------------------------------
	customer := r.Group("/customer")
	customer.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleCustomer))
	{
		customer.GET("/profile", userCtrl.GetProfile)
		customer.POST("/logout", userCtrl.Logout)

		customer.GET("/bookings", customerCtrl.GetBookings)
		customer.POST("/bookings", customerCtrl.CreateBooking)
		customer.GET("/bookings/:booking_id", customerCtrl.GetBookingByID)
		customer.POST("/bookings/:booking_id/complaint", customerCtrl.SubmitComplaint)

		customer.GET("/services", customerCtrl.GetServices)
		customer.GET("/schedules", customerCtrl.GetSchedules)
	}

	// ----------------------------------------------------------------
	//                      CLEANER ROUTES
	// ----------------------------------------------------------------
	cleaner := r.Group("/cleaner")
	cleaner.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleCleaner))
	{
		cleaner.GET("/profile", userCtrl.GetProfile)
		cleaner.POST("/logout", userCtrl.Logout)

		cleaner.GET("/bookings", cleanerBookingCtrl.GetBookings)
		cleaner.GET("/bookings/:booking_id", cleanerBookingCtrl.GetBookingByID)
		cleaner.PATCH("/bookings/:booking_id/status", cleanerBookingCtrl.UpdateStatus)
		// Deprecated: varian string-reference dari upload evidence
		cleaner.POST("/bookings/:booking_id/evidence", cleanerBookingCtrl.UploadEvidenceRef)

		cleaner.GET("/schedule", cleanerBookingCtrl.GetSchedule)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleAdmin))
	{
		admin.GET("/profile", userCtrl.GetProfile)
		admin.POST("/logout", userCtrl.Logout)

		admin.GET("/bookings", adminBookingCtrl.GetAllBookings)
		admin.GET("/bookings/:booking_id", adminBookingCtrl.GetBookingByID)
		admin.PATCH("/bookings/:booking_id/status", adminBookingCtrl.UpdateStatus)
		admin.PATCH("/bookings/:booking_id/assign", adminBookingCtrl.AssignCleaner)

		admin.GET("/schedules", scheduleCtrl.GetAllSchedules)
		admin.POST("/schedules", scheduleCtrl.CreateSchedule)
		admin.GET("/schedules/:schedule_id", scheduleCtrl.GetScheduleByID)
		admin.PATCH("/schedules/:schedule_id", scheduleCtrl.UpdateSchedule)
		admin.DELETE("/schedules/:schedule_id", scheduleCtrl.DeleteSchedule)

		admin.GET("/cleaners", cleanerCtrl.GetAllCleaners)
		admin.POST("/cleaners", cleanerCtrl.CreateCleaner)
		admin.GET("/cleaners/:cleaner_id", cleanerCtrl.GetCleanerByID)
		admin.PATCH("/cleaners/:cleaner_id", cleanerCtrl.UpdateCleaner)
		admin.DELETE("/cleaners/:cleaner_id", cleanerCtrl.DeleteCleaner)

		admin.GET("/services", serviceCtrl.GetAllServices)
		admin.POST("/services", serviceCtrl.CreateService)
		admin.GET("/services/:service_id", serviceCtrl.GetServiceByID)
		admin.PATCH("/services/:service_id", serviceCtrl.UpdateService)
		admin.DELETE("/services/:service_id", serviceCtrl.DeleteService)

		admin.GET("/dashboard/stats", dashboardCtrl.GetStats)
	}

	// WebSocket untuk dashboard admin
	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware())
	{
		ws.GET("/admin", controllers.RealtimeHandler)
	}

	return r
}
