package models

import (
	"time"
)

// ChatReadState tracks per-user read progress in a chat. One row per
// (chat, user) pair; the pair is the primary key so duplicates are impossible.
type ChatReadState struct {
	ChatID            uint      `gorm:"primaryKey" json:"chat_id"`
	UserID            uint      `gorm:"primaryKey" json:"user_id"`
	LastReadMessageID uint      `gorm:"not null;default:0" json:"last_read_message_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
