package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/farellandr/rifas/internal/helpers"
	"github.com/farellandr/rifas/internal/models"
)

const TestJWTSecret = "test-jwt-secret"

// SetupTestDB opens a private in-memory sqlite database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.Raffle{},
		&models.RaffleNumber{},
		&models.Payment{},
		&models.Setting{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateTestRaffle inserts a raffle with status and a pool of total
// available numbers.
func CreateTestRaffle(t *testing.T, db *gorm.DB, price string, total int, status string) models.Raffle {
	t.Helper()

	now := time.Now()
	raffle := models.Raffle{
		Title:            "Test Raffle",
		Description:      "A test raffle",
		PrizeDescription: "A prize",
		TicketPrice:      decimal.RequireFromString(price),
		TotalNumbers:     total,
		Status:           status,
		StartDate:        now,
		EndDate:          now.Add(24 * time.Hour),
		DrawDate:         now.Add(48 * time.Hour),
	}
	if err := db.Create(&raffle).Error; err != nil {
		t.Fatalf("Failed to create test raffle: %v", err)
	}

	width := helpers.NumberWidth(total)
	pool := make([]models.RaffleNumber, total)
	for i := range pool {
		pool[i] = models.RaffleNumber{RaffleID: raffle.ID, Number: helpers.FormatNumber(i, width), Status: models.NumberAvailable}
	}
	if err := db.CreateInBatches(pool, 200).Error; err != nil {
		t.Fatalf("Failed to create test pool: %v", err)
	}
	return raffle
}

func CreateTestUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: strings.ToLower(email), Phone: "555-0100"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// GetNumber loads one pool row.
func GetNumber(t *testing.T, db *gorm.DB, raffleID uuid.UUID, number string) models.RaffleNumber {
	t.Helper()

	var n models.RaffleNumber
	if err := db.Where("raffle_id = ? AND number = ?", raffleID, number).First(&n).Error; err != nil {
		t.Fatalf("Failed to load number %s: %v", number, err)
	}
	return n
}

func GetPayment(t *testing.T, db *gorm.DB, id uuid.UUID) models.Payment {
	t.Helper()

	var p models.Payment
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("Failed to load payment %s: %v", id, err)
	}
	return p
}

// CountNumbers counts the pool rows of a raffle with the given status.
func CountNumbers(t *testing.T, db *gorm.DB, raffleID uuid.UUID, status string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.RaffleNumber{}).Where("raffle_id = ? AND status = ?", raffleID, status).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count numbers: %v", err)
	}
	return count
}

func CountPayments(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count payments: %v", err)
	}
	return count
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
