package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cbpricey/Motion-Industries/internal/domain"
	"github.com/cbpricey/Motion-Industries/internal/pkg/logger"
)

// DB opens the database named by TEST_POSTGRES_DSN and migrates the schema.
// Tests that need a real database skip when the variable is unset.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping database test")
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}

	if err := gdb.AutoMigrate(
		&domain.User{},
		&domain.UserToken{},
		&domain.CandidateDoc{},
		&domain.ReviewLogEntry{},
		&domain.FeedbackEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// Tx begins a transaction that is rolled back when the test finishes, so
// tests never leave rows behind.
func Tx(t *testing.T, gdb *gorm.DB) *gorm.DB {
	t.Helper()

	tx := gdb.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

func Logger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return log
}

// SeedUser inserts a user with a unique email and returns it.
func SeedUser(t *testing.T, tx *gorm.DB, role domain.Role) *domain.User {
	t.Helper()

	u := &domain.User{
		ID:       uuid.New(),
		Name:     "Test User",
		Email:    fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := tx.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCandidate inserts a candidate document with the given confidence
// fraction and status.
func SeedCandidate(t *testing.T, tx *gorm.DB, confidence float64, status string, createdAt time.Time) *domain.CandidateDoc {
	t.Helper()

	doc := &domain.CandidateDoc{
		ID:           uuid.NewString(),
		Manufacturer: "Acme Bearings",
		SKUNumber:    fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		Title:        "6203-2RS deep groove ball bearing",
		ImageURL:     "https://img.example.com/6203.jpg",
		Confidence:   confidence,
		Status:       status,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := tx.Create(doc).Error; err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return doc
}
