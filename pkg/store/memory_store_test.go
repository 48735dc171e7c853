package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tfdcommunity/pkg/domain"
)

func TestMemoryStoreUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := domain.User{ID: "u1", Username: "alice", Nickname: "Al", Role: domain.RoleUser}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateUser(ctx, domain.User{ID: "u2", Username: "alice"}); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("duplicate create err = %v, want ErrDuplicateUsername", err)
	}

	got, ok, err := s.GetUserByUsername(ctx, "alice")
	if err != nil || !ok || got.ID != "u1" {
		t.Fatalf("get by username = %+v, %v, %v", got, ok, err)
	}
	if _, ok, err := s.GetUserByUsername(ctx, "Alice"); err != nil || ok {
		t.Fatalf("username lookup should be case-sensitive: ok=%v err=%v", ok, err)
	}

	if err := s.SetOnlineStatus(ctx, "u1", true); err != nil {
		t.Fatalf("set online: %v", err)
	}
	if err := s.SetProfilePicture(ctx, "u1", "data:image/png;base64,AAA"); err != nil {
		t.Fatalf("set picture: %v", err)
	}
	if err := s.SetRole(ctx, "u1", domain.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}

	got, ok, err = s.GetUserByID(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("get by id: ok=%v err=%v", ok, err)
	}
	if !got.OnlineStatus || got.ProfilePicture != "data:image/png;base64,AAA" || got.Role != domain.RoleAdmin {
		t.Fatalf("updates not applied: %+v", got)
	}

	if err := s.SetOnlineStatus(ctx, "missing", true); err != nil {
		t.Fatalf("set online on missing user: %v", err)
	}
	if n, err := s.CountOnlineUsers(ctx); err != nil || n != 1 {
		t.Fatalf("online count = %d, %v", n, err)
	}
}

func TestMemoryStoreChatOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// inserted newest first to check ordering is by timestamp
	for i := 9; i >= 0; i-- {
		err := s.AppendChatMessage(ctx, domain.ChatMessage{
			ID:        fmt.Sprintf("m%d", i),
			Message:   fmt.Sprintf("msg %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := s.ListChatMessages(ctx, 0)
	if err != nil || len(all) != 10 {
		t.Fatalf("list all = %d messages, %v", len(all), err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.Before(all[i-1].Timestamp) {
			t.Fatalf("message %d out of order", i)
		}
	}

	limited, err := s.ListChatMessages(ctx, 3)
	if err != nil || len(limited) != 3 {
		t.Fatalf("list limited = %d messages, %v", len(limited), err)
	}
	for i, want := range []string{"m0", "m1", "m2"} {
		if limited[i].ID != want {
			t.Fatalf("limited[%d] = %s, want %s", i, limited[i].ID, want)
		}
	}
}

func TestMemoryStoreAnnouncementsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := s.CreateAnnouncement(ctx, domain.Announcement{
			ID:        fmt.Sprintf("a%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create announcement: %v", err)
		}
	}

	list, err := s.ListAnnouncements(ctx, 2)
	if err != nil || len(list) != 2 {
		t.Fatalf("list = %d announcements, %v", len(list), err)
	}
	if list[0].ID != "a4" || list[1].ID != "a3" {
		t.Fatalf("order = %s, %s; want a4, a3", list[0].ID, list[1].ID)
	}
}
