package model

import (
	"database/sql"
	"time"
)

// User represents a registered account in the system.
type User struct {
	ID           string         `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string         `json:"username" gorm:"type:varchar(100);not null;uniqueIndex:uq_users_username"`
	Email        string         `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"` // Not exposed in API responses
	FullName     sql.NullString `json:"fullName,omitempty" gorm:"type:varchar(255)"`
	AvatarURL    sql.NullString `json:"avatarUrl,omitempty" gorm:"type:varchar(512)"`
	Preferences  sql.NullString `json:"preferences,omitempty" gorm:"type:text"` // Opaque JSON string owned by the client
	Verified     bool           `json:"verified" gorm:"not null;default:false"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"not null"`
	LastLoginAt  sql.NullTime   `json:"lastLoginAt,omitempty"`
}

// TableName keeps the GORM migration on the same table the raw queries use.
func (User) TableName() string {
	return "users"
}

// PublicUser is the user shape returned by the API.
type PublicUser struct {
	UserID           string    `json:"userId"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	FullName         string    `json:"fullName,omitempty"`
	AvatarURL        string    `json:"avatarUrl,omitempty"`
	RegistrationDate time.Time `json:"registrationDate"`
	Verified         bool      `json:"verified"`
}

// Public returns the API view of the user. The password hash is dropped here
// in addition to the json:"-" tag on the struct field.
func (u *User) Public() PublicUser {
	p := PublicUser{
		UserID:           u.ID,
		Username:         u.Username,
		Email:            u.Email,
		RegistrationDate: u.CreatedAt,
		Verified:         u.Verified,
	}
	if u.FullName.Valid {
		p.FullName = u.FullName.String
	}
	if u.AvatarURL.Valid {
		p.AvatarURL = u.AvatarURL.String
	}
	return p
}
