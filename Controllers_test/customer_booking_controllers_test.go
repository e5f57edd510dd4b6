package Controllers_test

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/controllers"
	"github.com/yeremiapane/cleaning-service-app/models"
	"github.com/yeremiapane/cleaning-service-app/utils"
)

func setupCustomerRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(authAs(userID, models.RoleCustomer))

	customerCtrl := controllers.NewCustomerBookingController(db)
	router.GET("/bookings", customerCtrl.GetBookings)
	router.POST("/bookings", customerCtrl.CreateBooking)
	router.GET("/bookings/:booking_id", customerCtrl.GetBookingByID)
	router.POST("/bookings/:booking_id/complaint", customerCtrl.SubmitComplaint)
	router.GET("/services", customerCtrl.GetServices)
	router.GET("/schedules", customerCtrl.GetSchedules)
	return router
}

func TestCreateBooking(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 2)
	router := setupCustomerRouter(db, customer.ID)

	req := newJSONRequest(t, "POST", "/bookings", map[string]interface{}{
		"service_id":  service.ID,
		"schedule_id": schedule.ID,
		"address":     "Jl. Mawar No. 5",
	})
	w := performRequest(router, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	message, data := decodeResponse(t, w)
	assert.Equal(t, "Booking berhasil dibuat.", message)
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, 150000.0, data["total_price"])

	code, _ := data["booking_code"].(string)
	assert.True(t, strings.HasPrefix(code, "CLN-"))
	assert.Len(t, code, 17) // CLN-YYYYMMDD-XXXX

	// Kapasitas berkurang satu, jadwal masih available
	var updated models.Schedule
	db.First(&updated, schedule.ID)
	assert.Equal(t, 1, updated.RemainingCapacity)
	assert.Equal(t, models.ScheduleStatusAvailable, updated.Status)
}

func TestCreateBookingExhaustsCapacity(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	router := setupCustomerRouter(db, customer.ID)

	payload := map[string]interface{}{
		"service_id":  service.ID,
		"schedule_id": schedule.ID,
		"address":     "Jl. Mawar No. 5",
	}

	w := performRequest(router, newJSONRequest(t, "POST", "/bookings", payload))
	assert.Equal(t, http.StatusCreated, w.Code)

	// Kapasitas habis: jadwal jadi full dan booking berikutnya ditolak
	var updated models.Schedule
	db.First(&updated, schedule.ID)
	assert.Equal(t, 0, updated.RemainingCapacity)
	assert.Equal(t, models.ScheduleStatusFull, updated.Status)

	w = performRequest(router, newJSONRequest(t, "POST", "/bookings", payload))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Jadwal tidak tersedia.", message)

	var count int64
	db.Model(&models.Booking{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// Sisa kapasitas tidak pernah negatif
	db.First(&updated, schedule.ID)
	assert.Equal(t, 0, updated.RemainingCapacity)

	// Tanggal jadwal tidak rusak oleh proses reservasi:
	// masih 10 karakter dan tetap ketemu lewat filter date
	assert.Equal(t, tomorrow(), updated.Date)
	var byDate models.Schedule
	assert.NoError(t, db.First(&byDate, "date = ?", tomorrow()).Error)
	assert.Equal(t, schedule.ID, byDate.ID)
}

// Properti kapasitas: N request paralel pada kapasitas C menghasilkan
// tepat C booking berhasil, sisanya ditolak bersih.
func TestConcurrentBookingCapacity(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 2)
	router := setupCustomerRouter(db, customer.ID)

	const attempts = 6
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := performRequest(router, newJSONRequest(t, "POST", "/bookings", map[string]interface{}{
				"service_id":  service.ID,
				"schedule_id": schedule.ID,
				"address":     "Jl. Mawar No. 5",
			}))
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created, rejected := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusUnprocessableEntity:
			rejected++
		}
	}
	assert.Equal(t, 2, created)
	assert.Equal(t, 4, rejected)

	var count int64
	db.Model(&models.Booking{}).Count(&count)
	assert.Equal(t, int64(2), count)

	var updated models.Schedule
	db.First(&updated, schedule.ID)
	assert.Equal(t, 0, updated.RemainingCapacity)
	assert.Equal(t, models.ScheduleStatusFull, updated.Status)
}

func TestCreateBookingInactiveService(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Old Service", 100000, models.ServiceStatusInactive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	router := setupCustomerRouter(db, customer.ID)

	w := performRequest(router, newJSONRequest(t, "POST", "/bookings", map[string]interface{}{
		"service_id":  service.ID,
		"schedule_id": schedule.ID,
		"address":     "Jl. Mawar No. 5",
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Layanan tidak tersedia.", message)

	// Kapasitas tidak tersentuh
	var updated models.Schedule
	db.First(&updated, schedule.ID)
	assert.Equal(t, 1, updated.RemainingCapacity)
}

func TestCreateBookingUnknownSchedule(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	router := setupCustomerRouter(db, customer.ID)

	w := performRequest(router, newJSONRequest(t, "POST", "/bookings", map[string]interface{}{
		"service_id":  service.ID,
		"schedule_id": 9999,
		"address":     "Jl. Mawar No. 5",
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Jadwal tidak tersedia.", message)
}

func TestBookingKeepsPriceSnapshot(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, customer, service, schedule, nil, models.BookingStatusPending)
	router := setupCustomerRouter(db, customer.ID)

	// Harga layanan naik setelah booking dibuat
	db.Model(&service).Update("price", 200000)

	w := performRequest(router, newJSONRequest(t, "GET",
		"/bookings/"+strconv.Itoa(int(booking.ID)), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	_, data := decodeResponse(t, w)
	assert.Equal(t, 150000.0, data["total_price"])
}

func TestGetBookingScopedToOwner(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	owner := seedCustomer(db, "owner@test.com")
	other := seedCustomer(db, "other@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, owner, service, schedule, nil, models.BookingStatusPending)

	// Customer lain melihat not-found, bukan forbidden
	router := setupCustomerRouter(db, other.ID)
	w := performRequest(router, newJSONRequest(t, "GET",
		"/bookings/"+strconv.Itoa(int(booking.ID)), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Booking tidak ditemukan.", message)
}

func TestGetSchedulesOnlyBookable(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	router := setupCustomerRouter(db, customer.ID)

	bookable := seedSchedule(db, tomorrow(), "09:00", "11:00", 2)

	seedSchedule(db, "2020-01-01", "09:00", "11:00", 2)
	full := seedSchedule(db, tomorrow(), "13:00", "15:00", 1)
	db.Model(&full).Updates(map[string]interface{}{
		"remaining_capacity": 0,
		"status":             models.ScheduleStatusFull,
	})
	closed := seedSchedule(db, tomorrow(), "16:00", "18:00", 2)
	db.Model(&closed).Update("status", models.ScheduleStatusUnavailable)

	w := performRequest(router, newJSONRequest(t, "GET", "/schedules", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Schedule `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, bookable.ID, resp.Data[0].ID)
}

func TestSubmitComplaintRequiresCompleted(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, customer, service, schedule, nil, models.BookingStatusPending)
	router := setupCustomerRouter(db, customer.ID)

	req := newMultipartRequest(t, "POST",
		"/bookings/"+strconv.Itoa(int(booking.ID))+"/complaint",
		map[string]string{"customer_complaint_desc": "Hasil pembersihan tidak memuaskan"},
		"customer_complaint", "bukti.jpg", smallImage())
	w := performRequest(router, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, `Hanya booking dengan status "Completed" yang dapat dikeluhkan.`, message)
}

func TestSubmitComplaintValidation(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, customer, service, schedule, nil, models.BookingStatusCompleted)
	router := setupCustomerRouter(db, customer.ID)
	url := "/bookings/" + strconv.Itoa(int(booking.ID)) + "/complaint"

	// Deskripsi terlalu pendek
	w := performRequest(router, newMultipartRequest(t, "POST", url,
		map[string]string{"customer_complaint_desc": "jelek"},
		"customer_complaint", "bukti.jpg", smallImage()))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Deskripsi minimal 10 karakter.", message)

	// Tanpa foto
	w = performRequest(router, newMultipartRequest(t, "POST", url,
		map[string]string{"customer_complaint_desc": "Hasil pembersihan tidak memuaskan"},
		"", "", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ = decodeResponse(t, w)
	assert.Equal(t, "Foto bukti keluhan wajib diupload.", message)

	// Ekstensi salah
	w = performRequest(router, newMultipartRequest(t, "POST", url,
		map[string]string{"customer_complaint_desc": "Hasil pembersihan tidak memuaskan"},
		"customer_complaint", "bukti.gif", smallImage()))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ = decodeResponse(t, w)
	assert.Equal(t, "Format gambar harus jpeg, jpg, atau png.", message)

	// Ukuran melebihi 2MB
	w = performRequest(router, newMultipartRequest(t, "POST", url,
		map[string]string{"customer_complaint_desc": "Hasil pembersihan tidak memuaskan"},
		"customer_complaint", "bukti.png", make([]byte, 3<<20)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	message, _ = decodeResponse(t, w)
	assert.Equal(t, "Ukuran gambar maksimal 2MB.", message)

	// Tidak ada efek samping di database
	var fresh models.Booking
	db.First(&fresh, booking.ID)
	assert.Nil(t, fresh.CustomerComplaint)
	assert.Nil(t, fresh.CustomerComplaintDesc)
}

func TestSubmitComplaintSuccess(t *testing.T) {
	utils.InitLogger()
	db := openTestDB()
	customer := seedCustomer(db, "customer@test.com")
	service := seedService(db, "Deep Cleaning", 150000, models.ServiceStatusActive)
	schedule := seedSchedule(db, tomorrow(), "09:00", "11:00", 1)
	booking := seedBooking(db, customer, service, schedule, nil, models.BookingStatusCompleted)
	router := setupCustomerRouter(db, customer.ID)
	t.Cleanup(func() { os.RemoveAll("public") })

	w := performRequest(router, newMultipartRequest(t, "POST",
		"/bookings/"+strconv.Itoa(int(booking.ID))+"/complaint",
		map[string]string{"customer_complaint_desc": "Lantai masih kotor di beberapa sudut"},
		"customer_complaint", "bukti.jpg", smallImage()))
	assert.Equal(t, http.StatusOK, w.Code)
	message, _ := decodeResponse(t, w)
	assert.Equal(t, "Keluhan berhasil dikirim. Admin akan meninjau keluhan Anda.", message)

	var fresh models.Booking
	db.First(&fresh, booking.ID)
	assert.NotNil(t, fresh.CustomerComplaint)
	assert.NotNil(t, fresh.CustomerComplaintDesc)
	assert.Equal(t, "Lantai masih kotor di beberapa sudut", *fresh.CustomerComplaintDesc)
	// Status booking tidak berubah karena keluhan
	assert.Equal(t, models.BookingStatusCompleted, fresh.Status)
	assert.True(t, utils.FileExists(*fresh.CustomerComplaint))
}
