package store

import (
	"context"
	"sort"
	"sync"

	"tfdcommunity/pkg/domain"
)

// MemoryStore keeps all records in process memory.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	usernames     map[string]string // username -> user id
	messages      []domain.ChatMessage
	announcements []domain.Announcement
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]domain.User),
		usernames: make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usernames[u.Username]; ok {
		return ErrDuplicateUsername
	}
	s.users[u.ID] = u
	s.usernames[u.Username] = u.ID
	return nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernames[username]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) SetOnlineStatus(_ context.Context, id string, online bool) error {
	s.updateUser(id, func(u *domain.User) { u.OnlineStatus = online })
	return nil
}

func (s *MemoryStore) SetProfilePicture(_ context.Context, id, value string) error {
	s.updateUser(id, func(u *domain.User) { u.ProfilePicture = value })
	return nil
}

func (s *MemoryStore) SetRole(_ context.Context, id string, role domain.UserRole) error {
	s.updateUser(id, func(u *domain.User) { u.Role = role })
	return nil
}

// updateUser is a no-op for unknown ids, matching an UPDATE with no rows.
func (s *MemoryStore) updateUser(id string, fn func(*domain.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return
	}
	fn(&u)
	s.users[id] = u
}

func (s *MemoryStore) CountOnlineUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, u := range s.users {
		if u.OnlineStatus {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) AppendChatMessage(_ context.Context, msg domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *MemoryStore) ListChatMessages(_ context.Context, limit int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) CreateAnnouncement(_ context.Context, a domain.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, a)
	return nil
}

func (s *MemoryStore) ListAnnouncements(_ context.Context, limit int) ([]domain.Announcement, error) {
	s.mu.RLock()
	out := make([]domain.Announcement, 0, len(s.announcements))
	for i := len(s.announcements) - 1; i >= 0; i-- {
		out = append(out, s.announcements[i])
	}
	s.mu.RUnlock()

	// newest first; equal timestamps keep the later insert first
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
