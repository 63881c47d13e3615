package service

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/TuongNguyen09/web-chat/internal/models"
)

// Hand-rolled mocks shared by the service tests.

type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User), nextID: 1}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (m *MockUserRepository) FindByIDs(ids []uint) ([]models.User, error) {
	out := make([]models.User, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

type MockChatRepository struct {
	chats  map[uint]*models.Chat
	nextID uint
}

func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{chats: make(map[uint]*models.Chat), nextID: 1}
}

func (m *MockChatRepository) Create(chat *models.Chat) error {
	if chat.ID == 0 {
		chat.ID = m.nextID
	}
	if chat.ID >= m.nextID {
		m.nextID = chat.ID + 1
	}
	for i := range chat.Members {
		chat.Members[i].ChatID = chat.ID
	}
	m.chats[chat.ID] = chat
	return nil
}

func (m *MockChatRepository) FindByID(id uint) (*models.Chat, error) {
	chat, ok := m.chats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return chat, nil
}

func (m *MockChatRepository) IsMember(chatID, userID uint) (bool, error) {
	chat, ok := m.chats[chatID]
	if !ok {
		return false, nil
	}
	for _, member := range chat.Members {
		if member.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockChatRepository) MemberIDs(chatID uint) ([]uint, error) {
	chat, ok := m.chats[chatID]
	if !ok {
		return nil, nil
	}
	ids := make([]uint, 0, len(chat.Members))
	for _, member := range chat.Members {
		ids = append(ids, member.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockChatRepository) AddMember(chatID, userID uint, role models.ChatRole) error {
	chat, ok := m.chats[chatID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	chat.Members = append(chat.Members, models.ChatMember{ChatID: chatID, UserID: userID, Role: role})
	return nil
}

func (m *MockChatRepository) RemoveMember(chatID, userID uint) error {
	chat, ok := m.chats[chatID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	members := chat.Members[:0]
	for _, member := range chat.Members {
		if member.UserID != userID {
			members = append(members, member)
		}
	}
	chat.Members = members
	return nil
}

func (m *MockChatRepository) GetUserChats(userID uint) ([]models.Chat, error) {
	var out []models.Chat
	for _, chat := range m.chats {
		for _, member := range chat.Members {
			if member.UserID == userID {
				out = append(out, *chat)
				break
			}
		}
	}
	return out, nil
}

// AddChat seeds a chat with plain member IDs.
func (m *MockChatRepository) AddChat(chatID uint, memberIDs ...uint) {
	chat := &models.Chat{ID: chatID, CreatorID: memberIDs[0]}
	for _, id := range memberIDs {
		chat.Members = append(chat.Members, models.ChatMember{ChatID: chatID, UserID: id})
	}
	m.chats[chatID] = chat
	if chatID >= m.nextID {
		m.nextID = chatID + 1
	}
}

type MockMessageRepository struct {
	messages map[uint]*models.Message
	nextID   uint
	failNext error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{messages: make(map[uint]*models.Message), nextID: 1}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	for _, existing := range m.messages {
		if existing.ClientID == message.ClientID && existing.SenderID == message.SenderID {
			return errors.New("duplicate client_id for sender")
		}
	}
	message.ID = m.nextID
	m.nextID++
	m.messages[message.ID] = message
	return nil
}

// AddMessage seeds a stored message with a fixed id.
func (m *MockMessageRepository) AddMessage(id, chatID, senderID uint) {
	m.messages[id] = &models.Message{ID: id, ChatID: chatID, SenderID: senderID, Content: "seed"}
	if id >= m.nextID {
		m.nextID = id + 1
	}
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	message, ok := m.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return message, nil
}

func (m *MockMessageRepository) FindChatMessages(chatID uint, cursor uint, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, message := range m.messages {
		if message.ChatID != chatID {
			continue
		}
		if cursor > 0 && message.ID >= cursor {
			continue
		}
		out = append(out, *message)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockMessageRepository) IsMessageInChat(messageID, chatID uint) (bool, error) {
	message, ok := m.messages[messageID]
	return ok && message.ChatID == chatID, nil
}

type MockReadStateRepository struct {
	states   map[string]*models.ChatReadState
	failNext error
}

func NewMockReadStateRepository() *MockReadStateRepository {
	return &MockReadStateRepository{states: make(map[string]*models.ChatReadState)}
}

func readStateKey(chatID, userID uint) string {
	return fmt.Sprintf("%d:%d", chatID, userID)
}

func (m *MockReadStateRepository) Upsert(chatID, userID, lastReadMessageID uint) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	key := readStateKey(chatID, userID)
	state, ok := m.states[key]
	if !ok {
		m.states[key] = &models.ChatReadState{ChatID: chatID, UserID: userID, LastReadMessageID: lastReadMessageID}
		return nil
	}
	if lastReadMessageID > state.LastReadMessageID {
		state.LastReadMessageID = lastReadMessageID
	}
	return nil
}

func (m *MockReadStateRepository) Get(chatID, userID uint) (*models.ChatReadState, error) {
	state, ok := m.states[readStateKey(chatID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return state, nil
}

func (m *MockReadStateRepository) ListByChat(chatID uint) ([]models.ChatReadState, error) {
	var out []models.ChatReadState
	for _, state := range m.states {
		if state.ChatID == chatID {
			out = append(out, *state)
		}
	}
	return out, nil
}

// recordedEvent captures one broadcaster publish for assertions.
type recordedEvent struct {
	Scope     string // "global", "user", "chat"
	UserID    uint
	ChatID    uint
	Subtopic  string
	EventType string
	Payload   interface{}
}

type RecordingBroadcaster struct {
	Events []recordedEvent
}

func (b *RecordingBroadcaster) PublishGlobal(eventType string, payload interface{}) {
	b.Events = append(b.Events, recordedEvent{Scope: "global", EventType: eventType, Payload: payload})
}

func (b *RecordingBroadcaster) PublishToUser(userID uint, eventType string, payload interface{}) {
	b.Events = append(b.Events, recordedEvent{Scope: "user", UserID: userID, EventType: eventType, Payload: payload})
}

func (b *RecordingBroadcaster) PublishToChat(chatID uint, subtopic string, eventType string, payload interface{}) {
	b.Events = append(b.Events, recordedEvent{Scope: "chat", ChatID: chatID, Subtopic: subtopic, EventType: eventType, Payload: payload})
}

func (b *RecordingBroadcaster) eventsOfType(eventType string) []recordedEvent {
	var out []recordedEvent
	for _, e := range b.Events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
