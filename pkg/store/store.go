package store

import (
	"context"
	"errors"

	"tfdcommunity/pkg/domain"
)

// ErrDuplicateUsername is returned when a user with the same username exists.
var ErrDuplicateUsername = errors.New("username already exists")

// Store defines persistence operations for users, chat messages, and announcements.
// Every method is an independent point operation.
type Store interface {
	// users
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByUsername(ctx context.Context, username string) (domain.User, bool, error)
	GetUserByID(ctx context.Context, id string) (domain.User, bool, error)
	SetOnlineStatus(ctx context.Context, id string, online bool) error
	SetProfilePicture(ctx context.Context, id, value string) error
	SetRole(ctx context.Context, id string, role domain.UserRole) error
	CountOnlineUsers(ctx context.Context) (int, error)

	// chat
	AppendChatMessage(ctx context.Context, msg domain.ChatMessage) error
	// ListChatMessages returns the earliest messages, oldest first.
	ListChatMessages(ctx context.Context, limit int) ([]domain.ChatMessage, error)

	// announcements
	CreateAnnouncement(ctx context.Context, a domain.Announcement) error
	// ListAnnouncements returns the newest announcements, newest first.
	ListAnnouncements(ctx context.Context, limit int) ([]domain.Announcement, error)

	Close() error
}

// SessionStore issues and resolves session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, error)
}
