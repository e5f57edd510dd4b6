package Controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/controllers"
	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

func setupAdminBookingRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(authAs(1, models.RoleAdmin))

	adminCtrl := controllers.NewAdminBookingController(db)
	router.GET("/bookings", adminCtrl.GetAllBookings)
	router.GET("/bookings/:booking_id", adminCtrl.GetBookingByID)
	router.PATCH("/bookings/:booking_id/status", adminCtrl.UpdateStatus)
	router.PATCH("/bookings/:booking_id/assign", adminCtrl.AssignCleaner)
	return router
}

func TestAdminUpdateStatusInvalid(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, customer, service, schedule, nil, models.BookingStatusPending)
	router := setupAdminBookingRouter(db)

	w := performRequest(router, newJSONRequest(t, "PATCH",
		"/bookings/"+strconv.Itoa(int(booking.ID))+"/status",
		map[string]interface{}{"status": "done"}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Status tidak valid.", message)

	var fresh models.Booking
	db.First(&fresh, booking.ID)
	assert.Equal(t, models.BookingStatusPending, fresh.Status)
}

func TestAdminFreeTransitions(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, customer, service, schedule, nil, models.BookingStatusPending)
	router := setupAdminBookingRouter(db)
	url := "/bookings/" + strconv.Itoa(int(booking.ID)) + "/status"

	// Admin bebas memindahkan status dalam enum yang valid
	for _, status := range []string{"approved", "canceled", "on_progress", "completed"} {
		w := performRequest(router, newJSONRequest(t, "PATCH", url,
			map[string]interface{}{"status": status}))
		assert.Equal(t, http.StatusOK, w.Code)

		var fresh models.Booking
		db.First(&fresh, booking.ID)
		assert.Equal(t, status, fresh.Status)
	}
}

func TestAdminReopenRequiresComplaint(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, customer, service, schedule, nil, models.BookingStatusCompleted)
	router := setupAdminBookingRouter(db)
	url := "/bookings/" + strconv.Itoa(int(booking.ID)) + "/status"
	payload := map[string]interface{}{"status": "on_progress"}

	// Tanpa keluhan customer, completed tidak boleh turun ke on_progress
	w := performRequest(router, newJSONRequest(t, "PATCH", url, payload))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Tidak dapat mengubah status dari Completed ke On Progress tanpa keluhan customer.", message)

	complaint := "uploads/complaints/complaint_1.jpg"
	complaintDesc := "Lantai masih kotor di beberapa sudut"
	db.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
		"customer_complaint":      complaint,
		"customer_complaint_desc": complaintDesc,
	})

	w = performRequest(router, newJSONRequest(t, "PATCH", url, payload))
	assert.Equal(t, http.StatusOK, w.Code)

	var fresh models.Booking
	db.First(&fresh, booking.ID)
	assert.Equal(t, models.BookingStatusOnProgress, fresh.Status)
}

func TestAdminAssignCleaner(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	_, cleaner := seedCleaner(db, "cleaner@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, customer, service, schedule, nil, models.BookingStatusApproved)
	router := setupAdminBookingRouter(db)
	url := "/bookings/" + strconv.Itoa(int(booking.ID)) + "/assign"

	// Cleaner tidak dikenal
	w := performRequest(router, newJSONRequest(t, "PATCH", url,
		map[string]interface{}{"cleaner_id": 9999}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Cleaner tidak ditemukan.", message)

	w = performRequest(router, newJSONRequest(t, "PATCH", url,
		map[string]interface{}{"cleaner_id": cleaner.ID}))
	assert.Equal(t, http.StatusOK, w.Code)
	message, _ = decodeResponse(t, w)
	assert.Equal(t, "Cleaner berhasil di-assign.", message)

	var fresh models.Booking
	db.First(&fresh, booking.ID)
	assert.NotNil(t, fresh.CleanerID)
	assert.Equal(t, cleaner.ID, *fresh.CleanerID)
}

func TestAdminBookingFilters(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 5)

	target := seedBooking(db, customer, service, schedule, nil, models.BookingStatusApproved)
	seedBooking(db, customer, service, schedule, nil, models.BookingStatusPending)
	seedBooking(db, customer, service, schedule, nil, models.BookingStatusPending)

	router := setupAdminBookingRouter(db)

	decode := func(w *httptest.ResponseRecorder) []models.Booking {
		var resp struct {
			Data []models.Booking `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.Data
	}

	w := performRequest(router, newJSONRequest(t, "GET", "/bookings?status=approved", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	bookings := decode(w)
	assert.Len(t, bookings, 1)
	assert.Equal(t, target.ID, bookings[0].ID)

	// Pencarian dengan potongan kode booking
	w = performRequest(router, newJSONRequest(t, "GET",
		"/bookings?search="+target.BookingCode[4:], nil))
	assert.Equal(t, http.StatusOK, w.Code)
	bookings = decode(w)
	assert.GreaterOrEqual(t, len(bookings), 1)
}
