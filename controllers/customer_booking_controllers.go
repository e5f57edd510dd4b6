package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/realtime"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

type CustomerBookingController struct {
	DB *gorm.DB
}

func NewCustomerBookingController(db *gorm.DB) *CustomerBookingController {
	return &CustomerBookingController{DB: db}
}

// GetBookings -> daftar booking milik customer, terbaru dulu
func (cbc *CustomerBookingController) GetBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	query := cbc.DB.Preload("Service").Preload("Schedule").Preload("Cleaner.User").
		Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Order("created_at desc").Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of bookings", bookings)
}

// CreateBooking -> buat booking baru terhadap service + schedule.
// Insert booking dan pengurangan kapasitas schedule berjalan dalam satu
// transaksi: dua-duanya berhasil atau dua-duanya batal. Kapasitas dikurangi
// lewat UPDATE bersyarat (remaining_capacity > 0), jadi dua request pada
// sisa kapasitas 1 terserialisasi dan hanya satu yang berhasil.
func (cbc *CustomerBookingController) CreateBooking(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	type reqBody struct {
		ServiceID  uint   `json:"service_id" binding:"required"`
		ScheduleID uint   `json:"schedule_id" binding:"required"`
		Address    string `json:"address" binding:"required,max=500"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var service models.Service
	if err := cbc.DB.First(&service, body.ServiceID).Error; err != nil || !service.IsActive() {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("Layanan tidak tersedia."))
		return
	}

	tx := cbc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, tx.Error)
		return
	}

	// Decrement bersyarat: gagal (0 row) berarti jadwal tidak available
	// atau kapasitasnya sudah habis. Sisa kapasitas tidak pernah negatif.
	res := tx.Model(&models.Schedule{}).
		Where("id = ? AND status = ? AND remaining_capacity > 0",
			body.ScheduleID, models.ScheduleStatusAvailable).
		UpdateColumn("remaining_capacity", gorm.Expr("remaining_capacity - 1"))
	if res.Error != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("Jadwal tidak tersedia."))
		return
	}

	// Suffix kode hanya 4 karakter per hari, jadi cek tabrakan dan ulang
	code, err := uniqueBookingCode(tx)
	if err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	booking := models.Booking{
		BookingCode: code,
		UserID:      userID,
		ServiceID:   service.ID,
		ScheduleID:  body.ScheduleID,
		Address:     body.Address,
		Status:      models.BookingStatusPending,
		TotalPrice:  service.Price, // snapshot harga saat booking dibuat
	}

	if err := tx.Create(&booking).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal membuat booking: %v", err))
		return
	}

	// Status full diturunkan dari sisa kapasitas, update kolom tertarget
	if err := tx.Model(&models.Schedule{}).
		Where("id = ? AND remaining_capacity <= 0", body.ScheduleID).
		UpdateColumn("status", models.ScheduleStatusFull).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal membuat booking: %v", err))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal membuat booking: %v", err))
		return
	}

	cbc.DB.Preload("Service").Preload("Schedule").First(&booking, booking.ID)

	realtime.BroadcastBookingUpdate(booking)
	utils.InfoLogger.Printf("Booking %s created by user %d", booking.BookingCode, userID)

	utils.RespondJSON(c, http.StatusCreated, "Booking berhasil dibuat.", booking)
}

// uniqueBookingCode menghasilkan kode yang belum terpakai, maksimal 5 percobaan
func uniqueBookingCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := models.GenerateBookingCode()
		var count int64
		if err := tx.Model(&models.Booking{}).Where("booking_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("gagal menghasilkan kode booking unik")
}

// GetBookingByID -> detail booking milik customer. Booking milik customer
// lain dilaporkan not-found, bukan forbidden.
func (cbc *CustomerBookingController) GetBookingByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var booking models.Booking
	if err := cbc.DB.Preload("Service").Preload("Schedule").Preload("Cleaner.User").
		Where("user_id = ?", userID).
		First(&booking, c.Param("booking_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Booking tidak ditemukan."))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

// SubmitComplaint -> keluhan atas booking completed: foto (jpeg/jpg/png,
// maks 2MB) + deskripsi minimal 10 karakter. Pengecekan state membaca
// baris booking dalam transaksi yang sama dengan penulisan, dan hanya
// kolom keluhan yang ditulis.
func (cbc *CustomerBookingController) SubmitComplaint(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	tx := cbc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, tx.Error)
		return
	}

	var booking models.Booking
	if err := tx.Where("user_id = ?", userID).
		First(&booking, c.Param("booking_id")).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Booking tidak ditemukan."))
		return
	}

	if !booking.IsCompleted() {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity,
			errors.New(`Hanya booking dengan status "Completed" yang dapat dikeluhkan.`))
		return
	}

	desc := strings.TrimSpace(c.PostForm("customer_complaint_desc"))
	if desc == "" {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("Deskripsi keluhan wajib diisi."))
		return
	}
	if len(desc) < 10 {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("Deskripsi minimal 10 karakter."))
		return
	}

	file, err := c.FormFile("customer_complaint")
	if err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("Foto bukti keluhan wajib diupload."))
		return
	}
	if err := utils.ValidateImage(file); err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	filename := fmt.Sprintf("complaint_%d_%d%s", booking.ID, time.Now().UnixNano(),
		strings.ToLower(filepath.Ext(file.Filename)))
	path, err := utils.SaveUploadedImage(c, file, utils.ComplaintDir, filename)
	if err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oldComplaint := booking.CustomerComplaint
	if err := tx.Model(&booking).Updates(map[string]interface{}{
		"customer_complaint":      path,
		"customer_complaint_desc": desc,
	}).Error; err != nil {
		tx.Rollback()
		utils.DeleteFile(path)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.DeleteFile(path)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Hapus file keluhan lama setelah penggantinya tersimpan
	if oldComplaint != nil {
		utils.DeleteFile(*oldComplaint)
	}

	cbc.DB.Preload("Service").Preload("Schedule").Preload("Cleaner.User").First(&booking, booking.ID)

	utils.RespondJSON(c, http.StatusOK,
		"Keluhan berhasil dikirim. Admin akan meninjau keluhan Anda.", booking)
}

// GetServices -> daftar layanan aktif
func (cbc *CustomerBookingController) GetServices(c *gin.Context) {
	var services []models.Service
	if err := cbc.DB.Where("status = ?", models.ServiceStatusActive).Find(&services).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of services", services)
}

// GetSchedules -> jadwal available dan upcoming (tanggal >= hari ini)
func (cbc *CustomerBookingController) GetSchedules(c *gin.Context) {
	today := time.Now().Format("2006-01-02")

	query := cbc.DB.Where("status = ? AND remaining_capacity > 0", models.ScheduleStatusAvailable).
		Where("date >= ?", today)

	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var schedules []models.Schedule
	if err := query.Order("date asc").Order("start_time asc").Find(&schedules).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of schedules", schedules)
}
