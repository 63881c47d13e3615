package models

import (
	"time"

	"gorm.io/gorm"
)

type MessageType string

const (
	TextMessage  MessageType = "text"
	ImageMessage MessageType = "image"
	FileMessage  MessageType = "file"
)

// Attachment is typed metadata for a file carried by a message. Kept as a
// structured value rather than a free-form map so the wire format stays
// checkable.
type Attachment struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

type Message struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Client-generated UUID for deduplication across retries.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender" json:"client_id"`

	ChatID   uint `gorm:"not null;index" json:"chat_id"`
	SenderID uint `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	Sender   User `gorm:"foreignKey:SenderID" json:"sender"`

	Content     string       `gorm:"type:text;not null" json:"content"`
	MessageType MessageType  `gorm:"type:varchar(20);default:'text'" json:"message_type"`
	Attachments []Attachment `gorm:"serializer:json" json:"attachments"`
}

type MessageResponse struct {
	ID          uint         `json:"id"`
	ClientID    string       `json:"client_id"`
	ChatID      uint         `json:"chat_id"`
	SenderID    uint         `json:"sender_id"`
	Sender      UserResponse `json:"sender"`
	Content     string       `json:"content"`
	MessageType MessageType  `json:"message_type"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	attachments := m.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	return MessageResponse{
		ID:          m.ID,
		ClientID:    m.ClientID,
		ChatID:      m.ChatID,
		SenderID:    m.SenderID,
		Sender:      m.Sender.ToResponse(),
		Content:     m.Content,
		MessageType: m.MessageType,
		Attachments: attachments,
		CreatedAt:   m.CreatedAt,
	}
}
