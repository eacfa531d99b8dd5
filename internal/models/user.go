package models

import (
	"time"
)

const GB = 1024 * 1024 * 1024

// User represents a registered account
type User struct {
	ID       uint   `gorm:"column:id;primaryKey" json:"id"`
	Name     string `gorm:"column:name;size:255;not null" json:"name"`
	Email    string `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"column:password;size:255;not null" json:"-"`

	// Password reset flow
	ResetToken       *string    `gorm:"column:reset_token;size:255" json:"-"`
	ResetTokenExpiry *time.Time `gorm:"column:reset_token_expiry" json:"-"`

	// Storage accounting
	StorageUsed  int64  `gorm:"column:storage_used;default:0" json:"storageUsed"`
	StorageLimit int64  `gorm:"column:storage_limit;default:1073741824" json:"storageLimit"`
	Plan         string `gorm:"column:plan;size:50;default:FREE" json:"plan"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// PublicUser is the shape exposed by search and room listings
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
