package models

import (
	"time"
)

// ContactMessage is one submission from the public contact form
type ContactMessage struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Email     string    `gorm:"column:email;size:255;not null" json:"email"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}
