package models

import "time"

// User is the account row plus its profile fields. Column names stay
// snake_case at the storage boundary (first_name, birth_place, ...),
// whatever the JSON casing looks like to clients.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     string `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(128);not null" json:"-"`

	FirstName    string     `gorm:"type:varchar(64)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(64)" json:"last_name"`
	Description  string     `gorm:"type:text" json:"description"`
	Sector       string     `gorm:"type:varchar(64)" json:"sector"`
	BirthDate    *time.Time `json:"birth_date"`
	BirthPlace   string     `gorm:"type:varchar(128)" json:"birth_place"`
	PhoneNumber  string     `gorm:"type:varchar(32)" json:"phone_number"`
	CountryCode  string     `gorm:"type:varchar(8)" json:"country_code"`
	ProfileImage string     `gorm:"type:varchar(512)" json:"profile_image"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
