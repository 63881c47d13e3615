package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/models"
	"github.com/TuongNguyen09/web-chat/internal/repository"
)

type ReadStateService struct {
	readStateRepo repository.ChatReadStateRepositoryInterface
	chatRepo      repository.ChatRepositoryInterface
	messageRepo   repository.MessageRepositoryInterface
	unread        *UnreadService
}

func NewReadStateService(readStateRepo repository.ChatReadStateRepositoryInterface, chatRepo repository.ChatRepositoryInterface, messageRepo repository.MessageRepositoryInterface, unread *UnreadService) *ReadStateService {
	return &ReadStateService{
		readStateRepo: readStateRepo,
		chatRepo:      chatRepo,
		messageRepo:   messageRepo,
		unread:        unread,
	}
}

// MarkRead persists the read acknowledgment, then resets the unread counter.
// The counter reset only happens after a successful persistence write; if the
// write fails the counter is untouched and the caller retries. The
// acknowledged message must belong to the chat, so a client cannot move its
// marker with an id from some other conversation.
func (s *ReadStateService) MarkRead(chatID, userID, lastMessageID uint) error {
	isMember, err := s.chatRepo.IsMember(chatID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.ErrForbidden
	}

	if lastMessageID > 0 {
		inChat, err := s.messageRepo.IsMessageInChat(lastMessageID, chatID)
		if err != nil {
			return err
		}
		if !inChat {
			return apperr.ErrNotFound
		}
	}

	if err := s.readStateRepo.Upsert(chatID, userID, lastMessageID); err != nil {
		return err
	}
	return s.unread.Reset(userID, chatID)
}

func (s *ReadStateService) Get(chatID, userID uint) (*models.ChatReadState, error) {
	state, err := s.readStateRepo.Get(chatID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return state, err
}

// ListForChat returns every member's read marker for the chat (read
// receipts). Member only.
func (s *ReadStateService) ListForChat(chatID, requesterID uint) ([]models.ChatReadState, error) {
	isMember, err := s.chatRepo.IsMember(chatID, requesterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperr.ErrForbidden
	}
	states, err := s.readStateRepo.ListByChat(chatID)
	if err != nil {
		return nil, err
	}
	if states == nil {
		states = []models.ChatReadState{}
	}
	return states, nil
}
