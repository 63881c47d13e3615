package repository

import (
	"gorm.io/gorm"

	"github.com/TuongNguyen09/web-chat/internal/models"
)

type ChatReadStateRepository struct {
	db *gorm.DB
}

func NewChatReadStateRepository(db *gorm.DB) *ChatReadStateRepository {
	return &ChatReadStateRepository{db: db}
}

// Upsert creates the (chat, user) row on first acknowledgment and updates it
// on every subsequent one. last_read_message_id is monotonic: a stale
// acknowledgment can never move it backwards.
func (r *ChatReadStateRepository) Upsert(chatID, userID, lastReadMessageID uint) error {
	return r.db.Exec(`
		INSERT INTO chat_read_states (chat_id, user_id, last_read_message_id, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON CONFLICT (chat_id, user_id) DO UPDATE
		SET last_read_message_id = GREATEST(chat_read_states.last_read_message_id, EXCLUDED.last_read_message_id),
			updated_at = NOW()
	`, chatID, userID, lastReadMessageID).Error
}

func (r *ChatReadStateRepository) Get(chatID, userID uint) (*models.ChatReadState, error) {
	var state models.ChatReadState
	err := r.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *ChatReadStateRepository) ListByChat(chatID uint) ([]models.ChatReadState, error) {
	var states []models.ChatReadState
	err := r.db.Where("chat_id = ?", chatID).Find(&states).Error
	return states, err
}
