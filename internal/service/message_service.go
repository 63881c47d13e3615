package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/models"
	"github.com/TuongNguyen09/web-chat/internal/repository"
	"github.com/TuongNguyen09/web-chat/internal/validation"
)

// MessageService persists messages and drives the realtime side effects:
// fan-out to the chat topic and unread counter increments for every member
// but the sender.
type MessageService struct {
	messageRepo repository.MessageRepositoryInterface
	chatRepo    repository.ChatRepositoryInterface
	unread      *UnreadService
	broadcaster Broadcaster
}

func NewMessageService(messageRepo repository.MessageRepositoryInterface, chatRepo repository.ChatRepositoryInterface, unread *UnreadService, broadcaster Broadcaster) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		unread:      unread,
		broadcaster: broadcaster,
	}
}

type SendMessageInput struct {
	ClientID    string              `json:"client_id"`
	Content     string              `json:"content"`
	MessageType models.MessageType  `json:"message_type"`
	Attachments []models.Attachment `json:"attachments"`
}

func (s *MessageService) SendMessage(chatID, senderID uint, input SendMessageInput) (*models.MessageResponse, error) {
	isMember, err := s.chatRepo.IsMember(chatID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.ErrForbidden
	}

	content := validation.TrimAndLimit(input.Content, validation.MaxMessageLength())
	if content == "" && len(input.Attachments) == 0 {
		return nil, errors.New("empty message")
	}
	if input.ClientID == "" {
		input.ClientID = uuid.NewString()
	}
	if input.MessageType == "" {
		input.MessageType = models.TextMessage
	}

	message := &models.Message{
		ClientID:    input.ClientID,
		ChatID:      chatID,
		SenderID:    senderID,
		Content:     content,
		MessageType: input.MessageType,
		Attachments: input.Attachments,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	stored, err := s.messageRepo.FindByID(message.ID)
	if err != nil {
		return nil, err
	}
	resp := stored.ToResponse()

	s.broadcaster.PublishToChat(chatID, "", "new_message", models.NewMessageEvent{
		ChatID:  chatID,
		Message: resp,
	})

	memberIDs, err := s.chatRepo.MemberIDs(chatID)
	if err != nil {
		return &resp, err
	}
	if err := s.unread.Increment(chatID, senderID, memberIDs); err != nil {
		return &resp, err
	}

	return &resp, nil
}

func (s *MessageService) GetChatMessages(chatID, requesterID uint, cursor uint, limit int) ([]models.MessageResponse, error) {
	isMember, err := s.chatRepo.IsMember(chatID, requesterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.ErrForbidden
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	messages, err := s.messageRepo.FindChatMessages(chatID, cursor, limit)
	if err != nil {
		return nil, err
	}
	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}
	return responses, nil
}
