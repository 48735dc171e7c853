package app

import (
	"context"
	"fmt"

	"tfdcommunity/pkg/domain"
)

// AnnouncementInput carries the fields of a new announcement.
type AnnouncementInput struct {
	Title     string
	Content   string
	ImageData *string
}

// ListAnnouncements returns announcements, newest first.
func (a *App) ListAnnouncements(ctx context.Context) ([]domain.Announcement, error) {
	items, err := a.store.ListAnnouncements(ctx, AnnouncementLimit)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return items, nil
}

// CreateAnnouncement publishes an announcement. Only admins and founders may post.
func (a *App) CreateAnnouncement(ctx context.Context, author domain.User, in AnnouncementInput) (domain.Announcement, error) {
	if !author.Role.CanAnnounce() {
		return domain.Announcement{}, ErrForbidden
	}
	ann := domain.Announcement{
		ID:            a.newID(),
		AdminID:       author.ID,
		AdminName:     author.Username,
		AdminNickname: author.Nickname,
		Title:         in.Title,
		Content:       in.Content,
		ImageData:     in.ImageData,
		Timestamp:     a.timestamp(),
	}
	if err := a.store.CreateAnnouncement(ctx, ann); err != nil {
		return domain.Announcement{}, fmt.Errorf("create announcement: %w", err)
	}
	return ann, nil
}
