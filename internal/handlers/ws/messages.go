package ws

import (
	"github.com/TuongNguyen09/web-chat/internal/apperr"
)

// MessageTypingStart signals the bound user started composing in a chat.
// Any identity fields a client smuggles into the payload are ignored; the
// connection identity wins.
type MessageTypingStart struct {
	ChatID uint `json:"chat_id"`
}

func (msg *MessageTypingStart) GetType() string {
	return "typing_start"
}

func (msg *MessageTypingStart) Process(ctx *MessageContext) error {
	return ctx.TypingService.StartTyping(msg.ChatID, ctx.UserID)
}

// MessageTypingStop clears the bound user's typing signal. Idempotent.
type MessageTypingStop struct {
	ChatID uint `json:"chat_id"`
}

func (msg *MessageTypingStop) GetType() string {
	return "typing_stop"
}

func (msg *MessageTypingStop) Process(ctx *MessageContext) error {
	return ctx.TypingService.StopTyping(msg.ChatID, ctx.UserID)
}

// MessageSubscribe attaches the connection to a chat's topics (main stream
// and typing indicators). Requires membership.
type MessageSubscribe struct {
	ChatID uint `json:"chat_id"`
}

func (msg *MessageSubscribe) GetType() string {
	return "subscribe"
}

func (msg *MessageSubscribe) Process(ctx *MessageContext) error {
	isMember, err := ctx.ChatService.IsMember(msg.ChatID, ctx.UserID)
	if err != nil {
		return err
	}
	if !isMember {
		return apperr.ErrForbidden
	}
	ctx.Hub.Subscribe(ctx.Client, ChatTopic(msg.ChatID, ""))
	ctx.Hub.Subscribe(ctx.Client, ChatTopic(msg.ChatID, "typing"))
	return nil
}

// MessageUnsubscribe detaches the connection from a chat's topics.
type MessageUnsubscribe struct {
	ChatID uint `json:"chat_id"`
}

func (msg *MessageUnsubscribe) GetType() string {
	return "unsubscribe"
}

func (msg *MessageUnsubscribe) Process(ctx *MessageContext) error {
	ctx.Hub.Unsubscribe(ctx.Client, ChatTopic(msg.ChatID, ""))
	ctx.Hub.Unsubscribe(ctx.Client, ChatTopic(msg.ChatID, "typing"))
	return nil
}
