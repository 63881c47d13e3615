package repository

import (
	"gorm.io/gorm"

	"github.com/TuongNguyen09/web-chat/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.Preload("Sender").First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindChatMessages(chatID uint, cursor uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.Preload("Sender").Where("chat_id = ?", chatID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	err := q.Order("id DESC").Limit(limit).Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) IsMessageInChat(messageID, chatID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("id = ? AND chat_id = ?", messageID, chatID).
		Count(&count).Error
	return count > 0, err
}
