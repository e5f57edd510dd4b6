package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/realtime"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GetStats mengambil statistik booking untuk dashboard admin
func (dc *DashboardController) GetStats(c *gin.Context) {
	today := time.Now().Format("2006-01-02")

	var stats struct {
		TotalOrders      int64   `json:"total_orders"`
		PendingOrders    int64   `json:"pending_orders"`
		ApprovedOrders   int64   `json:"approved_orders"`
		OnProgressOrders int64   `json:"on_progress_orders"`
		CompletedOrders  int64   `json:"completed_orders"`
		CanceledOrders   int64   `json:"canceled_orders"`
		TodayOrders      int64   `json:"today_orders"`
		TotalRevenue     float64 `json:"total_revenue"`
		RevenueFormatted string  `json:"revenue_formatted"`
	}

	dc.DB.Model(&models.Booking{}).Count(&stats.TotalOrders)
	dc.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusPending).Count(&stats.PendingOrders)
	dc.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusApproved).Count(&stats.ApprovedOrders)
	dc.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusOnProgress).Count(&stats.OnProgressOrders)
	dc.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusCompleted).Count(&stats.CompletedOrders)
	dc.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusCanceled).Count(&stats.CanceledOrders)
	dc.DB.Model(&models.Booking{}).Where("DATE(created_at) = ?", today).Count(&stats.TodayOrders)

	dc.DB.Model(&models.Booking{}).Where("status = ?", models.BookingStatusCompleted).
		Select("COALESCE(SUM(total_price), 0)").Row().Scan(&stats.TotalRevenue)
	stats.RevenueFormatted = utils.FormatCurrency(stats.TotalRevenue)

	var recentBookings []models.Booking
	dc.DB.Preload("User").Preload("Service").
		Order("created_at desc").Limit(5).
		Find(&recentBookings)

	realtime.BroadcastDashboardUpdate(stats)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", gin.H{
		"statistics":      stats,
		"recent_bookings": recentBookings,
	})
}
