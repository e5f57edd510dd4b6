package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/realtime"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

type AdminBookingController struct {
	DB *gorm.DB
}

func NewAdminBookingController(db *gorm.DB) *AdminBookingController {
	return &AdminBookingController{DB: db}
}

// GetAllBookings -> semua booking, filter search/status/rentang tanggal
func (abc *AdminBookingController) GetAllBookings(c *gin.Context) {
	query := abc.DB.Preload("User").Preload("Service").Preload("Schedule").Preload("Cleaner.User")

	if search := c.Query("search"); search != "" {
		query = query.Where("booking_code LIKE ?", "%"+search+"%")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if start, end := c.Query("start_date"), c.Query("end_date"); start != "" && end != "" {
		query = query.Where("created_at BETWEEN ? AND ?", start, end)
	}

	var bookings []models.Booking
	if err := query.Order("created_at desc").Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of bookings", bookings)
}

// GetBookingByID -> detail 1 booking
func (abc *AdminBookingController) GetBookingByID(c *gin.Context) {
	var booking models.Booking
	if err := abc.DB.Preload("User").Preload("Service").Preload("Schedule").Preload("Cleaner.User").
		First(&booking, c.Param("booking_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Booking tidak ditemukan."))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

// UpdateStatus -> admin boleh set status apa pun dari enum yang valid.
// Satu-satunya aturan tambahan: turun dari completed ke on_progress hanya
// boleh kalau ada keluhan customer. Pengecekan keluhan membaca baris
// booking dalam transaksi yang sama dengan penulisan supaya tidak balapan
// dengan edit admin lain.
func (abc *AdminBookingController) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Status wajib diisi."))
		return
	}

	// Nilai status dicek sebelum pengecekan state apa pun
	if !models.ValidBookingStatus(body.Status) {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("Status tidak valid."))
		return
	}

	tx := abc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, tx.Error)
		return
	}

	// Baca state terkini di dalam transaksi yang sama dengan penulisan
	var booking models.Booking
	if err := tx.First(&booking, c.Param("booking_id")).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Booking tidak ditemukan."))
		return
	}

	if booking.Status == models.BookingStatusCompleted &&
		body.Status == models.BookingStatusOnProgress &&
		!booking.HasComplaint() {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity,
			errors.New("Tidak dapat mengubah status dari Completed ke On Progress tanpa keluhan customer."))
		return
	}

	booking.Status = body.Status
	if err := tx.Save(&booking).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	abc.DB.Preload("User").Preload("Service").Preload("Schedule").Preload("Cleaner.User").
		First(&booking, booking.ID)

	realtime.BroadcastBookingUpdate(booking)
	utils.InfoLogger.Printf("Booking %s status set to %s by admin", booking.BookingCode, booking.Status)

	utils.RespondJSON(c, http.StatusOK, "Status booking berhasil diperbarui.", booking)
}

// AssignCleaner -> tugaskan cleaner ke booking
func (abc *AdminBookingController) AssignCleaner(c *gin.Context) {
	var body struct {
		CleanerID uint `json:"cleaner_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Cleaner wajib dipilih."))
		return
	}

	var cleaner models.Cleaner
	if err := abc.DB.First(&cleaner, body.CleanerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Cleaner tidak ditemukan."))
		return
	}

	var booking models.Booking
	if err := abc.DB.First(&booking, c.Param("booking_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Booking tidak ditemukan."))
		return
	}

	// Hanya kolom penugasan yang ditulis
	if err := abc.DB.Model(&booking).Update("cleaner_id", cleaner.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	abc.DB.Preload("User").Preload("Service").Preload("Schedule").Preload("Cleaner.User").
		First(&booking, booking.ID)

	realtime.BroadcastBookingAssigned(booking)

	utils.RespondJSON(c, http.StatusOK, "Cleaner berhasil di-assign.", booking)
}
