package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/cleaning-service-app/models"
)

var testDBCounter int64

// openTestDB membuka database sqlite in-memory terpisah per test.
// Nama DSN dibuat unik supaya pool koneksi gorm tetap menunjuk ke
// database yang sama dan antar test tidak saling bocor data.
func openTestDB() *gorm.DB {
	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:cleaning_test_%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Cleaner{},
		&models.Service{},
		&models.Schedule{},
		&models.Booking{},
	)
	if err != nil {
		panic(err)
	}

	// Satu koneksi: penulisan paralel ke sqlite in-memory terserialisasi
	// alih-alih gagal dengan busy error
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db
}

// authAs meniru AuthMiddleware: isi user_id dan role dari token
func authAs(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func seedCustomer(db *gorm.DB, email string) models.User {
	user := models.User{
		Name:     "Test Customer",
		Email:    email,
		Password: "hashed-password",
		Role:     models.RoleCustomer,
	}
	db.Create(&user)
	return user
}

func seedCleaner(db *gorm.DB, email string) (models.User, models.Cleaner) {
	user := models.User{
		Name:     "Test Cleaner",
		Email:    email,
		Password: "hashed-password",
		Role:     models.RoleCleaner,
	}
	db.Create(&user)
	cleaner := models.Cleaner{
		UserID: user.ID,
		Phone:  "08123456789",
		Status: models.CleanerStatusActive,
	}
	db.Create(&cleaner)
	return user, cleaner
}

func seedService(db *gorm.DB, name string, price float64, status string) models.Service {
	service := models.Service{
		Name:            name,
		Description:     "",
		Price:           price,
		DurationMinutes: 120,
		Status:          status,
	}
	db.Create(&service)
	return service
}

func seedSchedule(db *gorm.DB, date, startTime, endTime string, capacity int) models.Schedule {
	schedule := models.Schedule{
		Date:              date,
		StartTime:         startTime,
		EndTime:           endTime,
		Capacity:          capacity,
		RemainingCapacity: capacity,
		Status:            models.ScheduleStatusAvailable,
	}
	db.Create(&schedule)
	return schedule
}

func seedBooking(db *gorm.DB, user models.User, service models.Service,
	schedule models.Schedule, cleanerID *uint, status string) models.Booking {
	booking := models.Booking{
		BookingCode: models.GenerateBookingCode(),
		UserID:      user.ID,
		ServiceID:   service.ID,
		ScheduleID:  schedule.ID,
		CleanerID:   cleanerID,
		Address:     "Jl. Test No. 1",
		Status:      status,
		TotalPrice:  service.Price,
	}
	db.Create(&booking)
	return booking
}

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format("2006-01-02")
}

// smallImage mengembalikan isi file gambar tiruan 1KB; validasi upload
// hanya memeriksa ekstensi dan ukuran, bukan isi file
func smallImage() []byte {
	return bytes.Repeat([]byte{0xFF}, 1024)
}

func newJSONRequest(t *testing.T, method, url string, payload interface{}) *http.Request {
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// newMultipartRequest membangun request form-data; fileField kosong berarti
// request tanpa lampiran file
func newMultipartRequest(t *testing.T, method, url string, fields map[string]string,
	fileField, fileName string, fileContent []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		assert.NoError(t, err)
		_, err = part.Write(fileContent)
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())

	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeResponse membongkar envelope {status, message, data}
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]interface{}) {
	var resp struct {
		Status  bool            `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	data := map[string]interface{}{}
	if len(resp.Data) > 0 && resp.Data[0] == '{' {
		assert.NoError(t, json.Unmarshal(resp.Data, &data))
	}
	return resp.Message, data
}
