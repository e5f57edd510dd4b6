package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

type ScheduleController struct {
	DB *gorm.DB
}

func NewScheduleController(db *gorm.DB) *ScheduleController {
	return &ScheduleController{DB: db}
}

// GetAllSchedules -> daftar jadwal, filter date/status/upcoming
func (sc *ScheduleController) GetAllSchedules(c *gin.Context) {
	query := sc.DB.Model(&models.Schedule{})

	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.Query("upcoming") == "true" {
		query = query.Where("date >= ?", time.Now().Format("2006-01-02"))
	}

	var schedules []models.Schedule
	if err := query.Order("date asc").Order("start_time asc").Find(&schedules).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of schedules", schedules)
}

// CreateSchedule -> buat jadwal baru; sisa kapasitas = kapasitas
func (sc *ScheduleController) CreateSchedule(c *gin.Context) {
	type reqBody struct {
		Date      string `json:"date" binding:"required"`
		StartTime string `json:"start_time" binding:"required"`
		EndTime   string `json:"end_time" binding:"required"`
		Capacity  int    `json:"capacity" binding:"required,min=1"`
		Status    string `json:"status" binding:"omitempty,oneof=available unavailable"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	status := body.Status
	if status == "" {
		status = models.ScheduleStatusAvailable
	}

	schedule := models.Schedule{
		Date:              body.Date,
		StartTime:         body.StartTime,
		EndTime:           body.EndTime,
		Capacity:          body.Capacity,
		RemainingCapacity: body.Capacity,
		Status:            status,
	}

	if err := sc.DB.Create(&schedule).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Jadwal berhasil dibuat.", schedule)
}

// GetScheduleByID
func (sc *ScheduleController) GetScheduleByID(c *gin.Context) {
	var schedule models.Schedule
	if err := sc.DB.First(&schedule, c.Param("schedule_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Jadwal tidak ditemukan."))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Schedule detail", schedule)
}

// UpdateSchedule -> ubah atribut jadwal. Status full dikelola sistem dari
// sisa kapasitas, bukan di-set manual lewat endpoint ini.
func (sc *ScheduleController) UpdateSchedule(c *gin.Context) {
	var schedule models.Schedule
	if err := sc.DB.First(&schedule, c.Param("schedule_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Jadwal tidak ditemukan."))
		return
	}

	type reqBody struct {
		Date      *string `json:"date"`
		StartTime *string `json:"start_time"`
		EndTime   *string `json:"end_time"`
		Status    *string `json:"status" binding:"omitempty,oneof=available unavailable"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Date != nil {
		schedule.Date = *body.Date
	}
	if body.StartTime != nil {
		schedule.StartTime = *body.StartTime
	}
	if body.EndTime != nil {
		schedule.EndTime = *body.EndTime
	}
	if body.Status != nil && schedule.RemainingCapacity > 0 {
		schedule.Status = *body.Status
	}

	if err := sc.DB.Save(&schedule).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Jadwal berhasil diperbarui.", schedule)
}

// DeleteSchedule -> tolak dengan conflict bila masih ada booking yang
// mereferensikan jadwal ini
func (sc *ScheduleController) DeleteSchedule(c *gin.Context) {
	var schedule models.Schedule
	if err := sc.DB.First(&schedule, c.Param("schedule_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Jadwal tidak ditemukan."))
		return
	}

	var count int64
	if err := sc.DB.Model(&models.Booking{}).Where("schedule_id = ?", schedule.ID).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if count > 0 {
		utils.RespondError(c, http.StatusConflict,
			errors.New("Jadwal tidak dapat dihapus karena memiliki booking."))
		return
	}

	if err := sc.DB.Delete(&schedule).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Jadwal berhasil dihapus.", nil)
}
