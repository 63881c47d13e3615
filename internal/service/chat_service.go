package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/TuongNguyen09/web-chat/internal/apperr"
	"github.com/TuongNguyen09/web-chat/internal/models"
	"github.com/TuongNguyen09/web-chat/internal/repository"
)

// ChatService is a thin wrapper over durable chat storage. It exists so the
// coordination services have a membership oracle; it carries no concurrency
// logic of its own.
type ChatService struct {
	chatRepo repository.ChatRepositoryInterface
	userRepo repository.UserRepositoryInterface
}

func NewChatService(chatRepo repository.ChatRepositoryInterface, userRepo repository.UserRepositoryInterface) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo}
}

type CreateChatInput struct {
	Name      string `json:"name"`
	IsGroup   bool   `json:"is_group"`
	MemberIDs []uint `json:"member_ids"`
}

func (s *ChatService) CreateChat(creatorID uint, input CreateChatInput) (*models.ChatResponse, error) {
	if !input.IsGroup && len(input.MemberIDs) != 1 {
		return nil, errors.New("direct chat requires exactly one other member")
	}

	members := append([]uint{creatorID}, input.MemberIDs...)
	users, err := s.userRepo.FindByIDs(members)
	if err != nil {
		return nil, err
	}
	if len(users) != len(dedupe(members)) {
		return nil, apperr.ErrNotFound
	}

	chat := &models.Chat{
		Name:      input.Name,
		IsGroup:   input.IsGroup,
		CreatorID: creatorID,
	}
	for _, id := range dedupe(members) {
		role := models.RoleMember
		if id == creatorID {
			role = models.RoleAdmin
		}
		chat.Members = append(chat.Members, models.ChatMember{UserID: id, Role: role})
	}

	if err := s.chatRepo.Create(chat); err != nil {
		return nil, err
	}

	created, err := s.chatRepo.FindByID(chat.ID)
	if err != nil {
		return nil, err
	}
	resp := created.ToResponse()
	return &resp, nil
}

func (s *ChatService) GetUserChats(userID uint) ([]models.ChatResponse, error) {
	chats, err := s.chatRepo.GetUserChats(userID)
	if err != nil {
		return nil, err
	}
	responses := make([]models.ChatResponse, 0, len(chats))
	for i := range chats {
		responses = append(responses, chats[i].ToResponse())
	}
	return responses, nil
}

func (s *ChatService) IsMember(chatID, userID uint) (bool, error) {
	return s.chatRepo.IsMember(chatID, userID)
}

func (s *ChatService) MemberIDs(chatID uint) ([]uint, error) {
	return s.chatRepo.MemberIDs(chatID)
}

func (s *ChatService) GetChat(chatID uint) (*models.Chat, error) {
	chat, err := s.chatRepo.FindByID(chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return chat, err
}

// AddMember adds a user to a group chat. Only an admin of the chat may add;
// direct chats are fixed at two members.
func (s *ChatService) AddMember(chatID, actorID, userID uint) error {
	chat, err := s.GetChat(chatID)
	if err != nil {
		return err
	}
	if !chat.IsGroup {
		return apperr.ErrInvalidState
	}
	if role, ok := memberRole(chat, actorID); !ok || role != models.RoleAdmin {
		return apperr.ErrForbidden
	}
	if _, already := memberRole(chat, userID); already {
		return apperr.ErrInvalidState
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.chatRepo.AddMember(chatID, userID, models.RoleMember)
}

// RemoveMember removes a user from a group chat. Admins may remove anyone;
// any member may remove themselves (leave).
func (s *ChatService) RemoveMember(chatID, actorID, userID uint) error {
	chat, err := s.GetChat(chatID)
	if err != nil {
		return err
	}
	if !chat.IsGroup {
		return apperr.ErrInvalidState
	}
	actorRole, actorIsMember := memberRole(chat, actorID)
	if !actorIsMember {
		return apperr.ErrForbidden
	}
	if actorID != userID && actorRole != models.RoleAdmin {
		return apperr.ErrForbidden
	}
	if _, isMember := memberRole(chat, userID); !isMember {
		return apperr.ErrNotFound
	}
	return s.chatRepo.RemoveMember(chatID, userID)
}

func memberRole(chat *models.Chat, userID uint) (models.ChatRole, bool) {
	for _, member := range chat.Members {
		if member.UserID == userID {
			return member.Role, true
		}
	}
	return "", false
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
