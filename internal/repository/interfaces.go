package repository

import (
	"github.com/TuongNguyen09/web-chat/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByID(id uint) (*models.User, error)
	FindByIDs(ids []uint) ([]models.User, error)
}

// ChatRepositoryInterface defines the contract for chat repository operations
type ChatRepositoryInterface interface {
	Create(chat *models.Chat) error
	FindByID(id uint) (*models.Chat, error)
	IsMember(chatID, userID uint) (bool, error)
	MemberIDs(chatID uint) ([]uint, error)
	AddMember(chatID, userID uint, role models.ChatRole) error
	RemoveMember(chatID, userID uint) error
	GetUserChats(userID uint) ([]models.Chat, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindChatMessages(chatID uint, cursor uint, limit int) ([]models.Message, error)
	IsMessageInChat(messageID, chatID uint) (bool, error)
}

// ChatReadStateRepositoryInterface defines the contract for read-state operations
type ChatReadStateRepositoryInterface interface {
	Upsert(chatID, userID, lastReadMessageID uint) error
	Get(chatID, userID uint) (*models.ChatReadState, error)
	ListByChat(chatID uint) ([]models.ChatReadState, error)
}
