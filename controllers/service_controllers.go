package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

type ServiceController struct {
	DB *gorm.DB
}

func NewServiceController(db *gorm.DB) *ServiceController {
	return &ServiceController{DB: db}
}

// GetAllServices
func (svc *ServiceController) GetAllServices(c *gin.Context) {
	query := svc.DB.Model(&models.Service{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var services []models.Service
	if err := query.Order("created_at desc").Find(&services).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of services", services)
}

// CreateService
func (svc *ServiceController) CreateService(c *gin.Context) {
	type reqBody struct {
		Name            string  `json:"name" binding:"required,max=120"`
		Description     string  `json:"description"`
		Price           float64 `json:"price" binding:"required,gt=0"`
		DurationMinutes int     `json:"duration_minutes" binding:"required,min=1"`
		Status          string  `json:"status" binding:"omitempty,oneof=active inactive"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	status := body.Status
	if status == "" {
		status = models.ServiceStatusActive
	}

	service := models.Service{
		Name:            body.Name,
		Description:     body.Description,
		Price:           body.Price,
		DurationMinutes: body.DurationMinutes,
		Status:          status,
	}

	if err := svc.DB.Create(&service).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Layanan berhasil dibuat.", service)
}

// GetServiceByID
func (svc *ServiceController) GetServiceByID(c *gin.Context) {
	var service models.Service
	if err := svc.DB.First(&service, c.Param("service_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Layanan tidak ditemukan."))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Service detail", service)
}

// UpdateService. Harga yang sudah tercatat di booking tidak ikut berubah
// karena booking menyimpan snapshot total_price.
func (svc *ServiceController) UpdateService(c *gin.Context) {
	var service models.Service
	if err := svc.DB.First(&service, c.Param("service_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Layanan tidak ditemukan."))
		return
	}

	type reqBody struct {
		Name            *string  `json:"name" binding:"omitempty,max=120"`
		Description     *string  `json:"description"`
		Price           *float64 `json:"price" binding:"omitempty,gt=0"`
		DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,min=1"`
		Status          *string  `json:"status" binding:"omitempty,oneof=active inactive"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Name != nil {
		service.Name = *body.Name
	}
	if body.Description != nil {
		service.Description = *body.Description
	}
	if body.Price != nil {
		service.Price = *body.Price
	}
	if body.DurationMinutes != nil {
		service.DurationMinutes = *body.DurationMinutes
	}
	if body.Status != nil {
		service.Status = *body.Status
	}

	if err := svc.DB.Save(&service).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Layanan berhasil diperbarui.", service)
}

// DeleteService -> tolak bila layanan masih direferensikan booking
func (svc *ServiceController) DeleteService(c *gin.Context) {
	var service models.Service
	if err := svc.DB.First(&service, c.Param("service_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Layanan tidak ditemukan."))
		return
	}

	var count int64
	if err := svc.DB.Model(&models.Booking{}).Where("service_id = ?", service.ID).Count(&count).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if count > 0 {
		utils.RespondError(c, http.StatusConflict,
			errors.New("Layanan tidak dapat dihapus karena memiliki booking."))
		return
	}

	if err := svc.DB.Delete(&service).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Layanan berhasil dihapus.", nil)
}
