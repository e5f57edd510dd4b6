package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

// CleanerController mengelola profil cleaner beserta akun user-nya.
// Keduanya berpasangan 1:1 dan dibuat/dihapus dalam satu transaksi.
type CleanerController struct {
	DB *gorm.DB
}

func NewCleanerController(db *gorm.DB) *CleanerController {
	return &CleanerController{DB: db}
}

// GetAllCleaners -> daftar cleaner, search nama/email, filter status
func (cc *CleanerController) GetAllCleaners(c *gin.Context) {
	query := cc.DB.Preload("User").
		Joins("JOIN users ON users.id = cleaners.user_id")

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("users.name LIKE ? OR users.email LIKE ?", pattern, pattern)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("cleaners.status = ?", status)
	}

	var cleaners []models.Cleaner
	if err := query.Order("cleaners.created_at desc").Find(&cleaners).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of cleaners", cleaners)
}

// CreateCleaner -> buat akun user role cleaner + profil dalam satu transaksi
func (cc *CleanerController) CreateCleaner(c *gin.Context) {
	type reqBody struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Phone    string `json:"phone" binding:"omitempty,max=20"`
		Status   string `json:"status" binding:"omitempty,oneof=active inactive"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	status := body.Status
	if status == "" {
		status = models.CleanerStatusActive
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, tx.Error)
		return
	}

	user := models.User{
		Name:     body.Name,
		Email:    body.Email,
		Password: string(hashed),
		Role:     models.RoleCleaner,
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal membuat cleaner: %v", err))
		return
	}

	cleaner := models.Cleaner{
		UserID: user.ID,
		Phone:  body.Phone,
		Status: status,
	}
	if err := tx.Create(&cleaner).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal membuat cleaner: %v", err))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal membuat cleaner: %v", err))
		return
	}

	cc.DB.Preload("User").First(&cleaner, cleaner.ID)

	utils.RespondJSON(c, http.StatusCreated, "Cleaner berhasil dibuat.", cleaner)
}

// GetCleanerByID
func (cc *CleanerController) GetCleanerByID(c *gin.Context) {
	var cleaner models.Cleaner
	if err := cc.DB.Preload("User").First(&cleaner, c.Param("cleaner_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Cleaner tidak ditemukan."))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cleaner detail", cleaner)
}

// UpdateCleaner -> update parsial profil dan/atau akun user dalam satu transaksi
func (cc *CleanerController) UpdateCleaner(c *gin.Context) {
	var cleaner models.Cleaner
	if err := cc.DB.Preload("User").First(&cleaner, c.Param("cleaner_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Cleaner tidak ditemukan."))
		return
	}

	type reqBody struct {
		Name     *string `json:"name"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Password *string `json:"password" binding:"omitempty,min=8"`
		Phone    *string `json:"phone"`
		Status   *string `json:"status" binding:"omitempty,oneof=active inactive"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, tx.Error)
		return
	}

	user := cleaner.User
	if body.Name != nil {
		user.Name = *body.Name
	}
	if body.Email != nil {
		user.Email = *body.Email
	}
	if body.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
		if err != nil {
			tx.Rollback()
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		user.Password = string(hashed)
	}
	if err := tx.Save(&user).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal memperbarui cleaner: %v", err))
		return
	}

	if body.Phone != nil {
		cleaner.Phone = *body.Phone
	}
	if body.Status != nil {
		cleaner.Status = *body.Status
	}
	cleaner.User = user
	if err := tx.Save(&cleaner).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal memperbarui cleaner: %v", err))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal memperbarui cleaner: %v", err))
		return
	}

	cc.DB.Preload("User").First(&cleaner, cleaner.ID)

	utils.RespondJSON(c, http.StatusOK, "Cleaner berhasil diperbarui.", cleaner)
}

// DeleteCleaner -> hapus profil beserta akun user-nya (compound lifecycle)
func (cc *CleanerController) DeleteCleaner(c *gin.Context) {
	var cleaner models.Cleaner
	if err := cc.DB.First(&cleaner, c.Param("cleaner_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Cleaner tidak ditemukan."))
		return
	}

	tx := cc.DB.Begin()
	if tx.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, tx.Error)
		return
	}

	if err := tx.Delete(&models.Cleaner{}, cleaner.ID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal menghapus cleaner: %v", err))
		return
	}
	if err := tx.Delete(&models.User{}, cleaner.UserID).Error; err != nil {
		tx.Rollback()
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal menghapus cleaner: %v", err))
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, fmt.Errorf("Gagal menghapus cleaner: %v", err))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Cleaner berhasil dihapus.", gin.H{"cleaner_id": cleaner.ID})
}
