package app

import (
	"context"
	"fmt"

	"tfdcommunity/pkg/domain"
)

// ListChatMessages returns the chat history, oldest first.
func (a *App) ListChatMessages(ctx context.Context) ([]domain.ChatMessage, error) {
	msgs, err := a.store.ListChatMessages(ctx, ChatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return msgs, nil
}

// SendChatMessage appends a message carrying the sender's current identity.
func (a *App) SendChatMessage(ctx context.Context, sender domain.User, text string) (domain.ChatMessage, error) {
	msg := domain.ChatMessage{
		ID:             a.newID(),
		UserID:         sender.ID,
		Username:       sender.Username,
		Nickname:       sender.Nickname,
		ProfilePicture: sender.ProfilePicture,
		Message:        text,
		Timestamp:      a.timestamp(),
	}
	if err := a.store.AppendChatMessage(ctx, msg); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("append chat message: %w", err)
	}
	return msg, nil
}
