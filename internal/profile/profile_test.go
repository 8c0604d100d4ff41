package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/virelio/ai-workspace/internal/auth"
	"github.com/virelio/ai-workspace/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestUpsertThenGet_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	u := models.User{Email: "a@example.com", Username: "abc", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	birth := time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC)
	fields := Fields{
		Username:     "newname",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Description:  "works on engines",
		Sector:       "Industry",
		BirthDate:    &birth,
		BirthPlace:   "London",
		PhoneNumber:  "5551234",
		CountryCode:  "+44",
		ProfileImage: "https://example.com/a.png",
	}

	if _, err := svc.Upsert(context.Background(), u.ID, fields); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := svc.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username != fields.Username ||
		got.FirstName != fields.FirstName ||
		got.LastName != fields.LastName ||
		got.Description != fields.Description ||
		got.Sector != fields.Sector ||
		got.BirthPlace != fields.BirthPlace ||
		got.PhoneNumber != fields.PhoneNumber ||
		got.CountryCode != fields.CountryCode ||
		got.ProfileImage != fields.ProfileImage {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.BirthDate == nil || !got.BirthDate.Equal(birth) {
		t.Fatalf("birth date mismatch: %v", got.BirthDate)
	}
	// account identity is untouched by a profile upsert
	if got.Email != "a@example.com" {
		t.Fatalf("email must not change, got %q", got.Email)
	}
}

func TestUpsert_MissingUser(t *testing.T) {
	svc := NewService(openTestDB(t))

	_, err := svc.Upsert(context.Background(), 999, Fields{Username: "ghost"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	hash, err := auth.HashPassword("old-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Email: "pw@example.com", Username: "pwuser", PasswordHash: hash}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "new-secret-1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), u.ID, "old-secret", "new-secret-1"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	got, err := svc.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !auth.CheckPassword(got.PasswordHash, "new-secret-1") {
		t.Fatalf("new password does not verify")
	}
	if auth.CheckPassword(got.PasswordHash, "old-secret") {
		t.Fatalf("old password still verifies")
	}
}

func TestDeleteAccount(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	hash, err := auth.HashPassword("secret-123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Email: "gone@example.com", Username: "goneuser", PasswordHash: hash}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := svc.DeleteAccount(context.Background(), u.ID, "nope"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if _, err := svc.Get(context.Background(), u.ID); err != nil {
		t.Fatalf("wrong password must not delete the row: %v", err)
	}

	if err := svc.DeleteAccount(context.Background(), u.ID, "secret-123"); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := svc.Get(context.Background(), u.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found after delete, got %v", err)
	}
}
