package models

import (
	"fmt"
	"time"
)

// ChatRoom is a direct-message room between exactly two users.
// Members are stored normalized (MemberA < MemberB) and PairKey carries
// a unique index so concurrent first contact cannot create duplicates.
type ChatRoom struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"_id"`
	MemberA   uint      `gorm:"column:member_a;index;not null" json:"-"`
	MemberB   uint      `gorm:"column:member_b;index;not null" json:"-"`
	PairKey   string    `gorm:"column:pair_key;uniqueIndex;size:64;not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`

	Members []PublicUser `gorm:"-" json:"members,omitempty"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// HasMember reports whether the user belongs to the room
func (r *ChatRoom) HasMember(userID uint) bool {
	return r.MemberA == userID || r.MemberB == userID
}

// NormalizePair orders a member pair and derives its unique key
func NormalizePair(a, b uint) (uint, uint, string) {
	if a > b {
		a, b = b, a
	}
	return a, b, fmt.Sprintf("%d:%d", a, b)
}

// Message is one chat message; append-only, ordered by CreatedAt
type Message struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"_id"`
	RoomID    uint      `gorm:"column:room_id;index;not null" json:"roomId"`
	SenderID  uint      `gorm:"column:sender_id;index;not null" json:"sender"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
