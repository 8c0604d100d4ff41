// Package profile mediates access to the stored user profile. The row
// in the database is canonical; callers treat what they read as a
// read-mostly cache.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/virelio/ai-workspace/internal/auth"
	"github.com/virelio/ai-workspace/internal/models"
	"gorm.io/gorm"
)

// ErrWrongPassword is returned when the supplied current password does
// not match the stored hash.
var ErrWrongPassword = errors.New("wrong password")

// Fields is the writable part of a profile. Upserts always write the
// full set, matching the storage contract's snake_case columns.
type Fields struct {
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Description  string     `json:"description"`
	Sector       string     `json:"sector"`
	BirthDate    *time.Time `json:"birth_date"`
	BirthPlace   string     `json:"birth_place"`
	PhoneNumber  string     `json:"phone_number"`
	CountryCode  string     `json:"country_code"`
	ProfileImage string     `json:"profile_image"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Get returns the profile row for a user id.
func (s *Service) Get(ctx context.Context, userID uint64) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert writes the full profile row keyed by user id and returns the
// updated row.
func (s *Service) Upsert(ctx context.Context, userID uint64, f Fields) (*models.User, error) {
	updates := map[string]any{
		"username":      f.Username,
		"first_name":    f.FirstName,
		"last_name":     f.LastName,
		"description":   f.Description,
		"sector":        f.Sector,
		"birth_date":    f.BirthDate,
		"birth_place":   f.BirthPlace,
		"phone_number":  f.PhoneNumber,
		"country_code":  f.CountryCode,
		"profile_image": f.ProfileImage,
		"updated_at":    time.Now(),
	}

	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"password_hash": hash,
			"updated_at":    time.Now(),
		}).Error
}

// DeleteAccount removes the user row after verifying the password.
// Cached state (redis identity, in-memory workspace) is the caller's to
// clear.
func (s *Service) DeleteAccount(ctx context.Context, userID uint64, password string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return ErrWrongPassword
	}
	return s.db.WithContext(ctx).Delete(&models.User{}, userID).Error
}
