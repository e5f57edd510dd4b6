package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/realtime"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

type CleanerBookingController struct {
	DB *gorm.DB
}

func NewCleanerBookingController(db *gorm.DB) *CleanerBookingController {
	return &CleanerBookingController{DB: db}
}

// currentCleaner me-resolve profil cleaner dari user yang login.
// User dengan role cleaner tanpa profil adalah kondisi error tersendiri,
// bukan "tidak punya booking".
func (clc *CleanerBookingController) currentCleaner(c *gin.Context) (*models.Cleaner, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return nil, false
	}

	var cleaner models.Cleaner
	if err := clc.DB.Where("user_id = ?", userID).First(&cleaner).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Profil cleaner tidak ditemukan."))
		return nil, false
	}
	return &cleaner, true
}

// GetBookings -> daftar booking yang ditugaskan ke cleaner
func (clc *CleanerBookingController) GetBookings(c *gin.Context) {
	cleaner, ok := clc.currentCleaner(c)
	if !ok {
		return
	}

	query := clc.DB.Preload("User").Preload("Service").Preload("Schedule").
		Where("cleaner_id = ?", cleaner.ID)

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

// GetBookingByID -> detail booking milik cleaner; booking cleaner lain
// dilaporkan not-found
func (clc *CleanerBookingController) GetBookingByID(c *gin.Context) {
	cleaner, ok := clc.currentCleaner(c)
	if !ok {
		return
	}

	var booking models.Booking
	if err := clc.DB.Preload("User").Preload("Service").Preload("Schedule").
		Where("cleaner_id = ?", cleaner.ID).
		First(&booking, c.Param("booking_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Booking tidak ditemukan."))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

// UpdateStatus -> cleaner hanya boleh approved->on_progress dan
// on_progress->completed. Menyelesaikan booking wajib melampirkan foto
// bukti (multipart field evidence_cleaner, jpeg/jpg/png maks 2MB).
// Pengecekan state membaca baris booking dalam transaksi yang sama
// dengan penulisan, dan hanya kolom status + evidence yang ditulis.
func (clc *CleanerBookingController) UpdateStatus(c *gin.Context) {
	cleaner, ok := clc.currentCleaner(c)
	if !ok {
		return
	}

	tx := clc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, tx.Error)
		return
	}

	var booking models.Booking
	if err := tx.Where("cleaner_id = ?", cleaner.ID).
		First(&booking, c.Param("booking_id")).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusNotFound, errors.New("Booking tidak ditemukan."))
		return
	}

	status := c.PostForm("status")
	if status != models.BookingStatusOnProgress && status != models.BookingStatusCompleted {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity,
			errors.New(`Anda hanya dapat mengubah status ke "On Progress" atau "Completed".`))
		return
	}

	if status == models.BookingStatusOnProgress && booking.Status != models.BookingStatusApproved {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity,
			errors.New("Booking harus di-approve terlebih dahulu."))
		return
	}

	if status == models.BookingStatusCompleted && booking.Status != models.BookingStatusOnProgress {
		tx.Rollback()
		utils.RespondError(c, http.StatusUnprocessableEntity,
			errors.New(`Booking harus dalam status "On Progress" untuk diselesaikan.`))
		return
	}

	updates := map[string]interface{}{"status": status}
	var newEvidence string
	var oldEvidence *string

	if status == models.BookingStatusCompleted {
		file, err := c.FormFile("evidence_cleaner")
		if err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusUnprocessableEntity,
				errors.New("Bukti foto wajib diupload untuk menyelesaikan booking."))
			return
		}
		if err := utils.ValidateImage(file); err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
			return
		}

		filename := fmt.Sprintf("evidence_%d_%d%s", booking.ID, time.Now().UnixNano(),
			strings.ToLower(filepath.Ext(file.Filename)))
		path, err := utils.SaveUploadedImage(c, file, utils.EvidenceDir, filename)
		if err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}

		newEvidence = path
		oldEvidence = booking.EvidenceCleaner
		updates["evidence_cleaner"] = path
	}

	if err := tx.Model(&booking).Updates(updates).Error; err != nil {
		tx.Rollback()
		utils.DeleteFile(newEvidence)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.DeleteFile(newEvidence)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Hapus bukti lama supaya tidak ada file yatim
	if oldEvidence != nil {
		utils.DeleteFile(*oldEvidence)
	}

	clc.DB.Preload("User").Preload("Service").Preload("Schedule").First(&booking, booking.ID)

	realtime.BroadcastBookingUpdate(booking)
	utils.InfoLogger.Printf("Booking %s set to %s by cleaner %d", booking.BookingCode, booking.Status, cleaner.ID)

	utils.RespondJSON(c, http.StatusOK, "Status booking berhasil diperbarui.", booking)
}

// UploadEvidenceRef menerima referensi path bukti yang sudah diupload.
//
// Deprecated: varian lama dari kontrak upload bukti. Jalur kanonisnya
// adalah UpdateStatus dengan file multipart; endpoint ini dipertahankan
// untuk kompatibilitas klien lama.
func (clc *CleanerBookingController) UploadEvidenceRef(c *gin.Context) {
	cleaner, ok := clc.currentCleaner(c)
	if !ok {
		return
	}

	var booking models.Booking
	if err := clc.DB.Where("cleaner_id = ?", cleaner.ID).
		First(&booking, c.Param("booking_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Booking tidak ditemukan."))
		return
	}

	if booking.Status != models.BookingStatusOnProgress {
		utils.RespondError(c, http.StatusUnprocessableEntity,
			errors.New(`Hanya booking dengan status "On Progress" yang dapat mengupload evidence.`))
		return
	}

	var body struct {
		EvidenceCleaner string `json:"evidence_cleaner" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, errors.New("Evidence wajib diisi."))
		return
	}

	booking.EvidenceCleaner = &body.EvidenceCleaner
	if err := clc.DB.Save(&booking).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Evidence berhasil diupload.", booking)
}

type scheduleEntry struct {
	ID           uint    `json:"id"`
	BookingCode  string  `json:"booking_code"`
	CustomerName string  `json:"customer_name"`
	ServiceName  string  `json:"service_name"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Address      string  `json:"address"`
	Status       string  `json:"status"`
	TotalPrice   float64 `json:"total_price"`
}

// GetSchedule -> kalender cleaner: booking approved/on_progress/completed
// dikelompokkan per tanggal jadwal, tiap tanggal diurutkan naik berdasarkan
// start_time. Murni proyeksi baca, tidak mengubah state.
func (clc *CleanerBookingController) GetSchedule(c *gin.Context) {
	cleaner, ok := clc.currentCleaner(c)
	if !ok {
		return
	}

	var bookings []models.Booking
	if err := clc.DB.Preload("User").Preload("Service").Preload("Schedule").
		Where("cleaner_id = ?", cleaner.ID).
		Where("status IN ?", []string{
			models.BookingStatusApproved,
			models.BookingStatusOnProgress,
			models.BookingStatusCompleted,
		}).
		Find(&bookings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Filter opsional bulan/tahun atau tanggal spesifik
	var prefix string
	if c.Query("month") != "" && c.Query("year") != "" {
		var month, year int
		fmt.Sscanf(c.Query("month"), "%d", &month)
		fmt.Sscanf(c.Query("year"), "%d", &year)
		prefix = fmt.Sprintf("%04d-%02d-", year, month)
	}
	dateFilter := c.Query("date")

	datesWithBookings := make([]string, 0)
	bookingsByDate := make(map[string][]scheduleEntry)

	for _, booking := range bookings {
		date := booking.Schedule.Date
		if prefix != "" && !strings.HasPrefix(date, prefix) {
			continue
		}
		if dateFilter != "" && date != dateFilter {
			continue
		}

		if _, seen := bookingsByDate[date]; !seen {
			datesWithBookings = append(datesWithBookings, date)
		}

		bookingsByDate[date] = append(bookingsByDate[date], scheduleEntry{
			ID:           booking.ID,
			BookingCode:  booking.BookingCode,
			CustomerName: booking.User.Name,
			ServiceName:  booking.Service.Name,
			StartTime:    booking.Schedule.StartTime,
			EndTime:      booking.Schedule.EndTime,
			Address:      booking.Address,
			Status:       booking.Status,
			TotalPrice:   booking.TotalPrice,
		})
	}

	sort.Strings(datesWithBookings)
	for date := range bookingsByDate {
		entries := bookingsByDate[date]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].StartTime < entries[j].StartTime
		})
		bookingsByDate[date] = entries
	}

	utils.RespondJSON(c, http.StatusOK, "Cleaner schedule", gin.H{
		"dates_with_bookings": datesWithBookings,
		"bookings_by_date":    bookingsByDate,
	})
}
