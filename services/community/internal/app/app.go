package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"tfdcommunity/internal/util"
	"tfdcommunity/pkg/store"
)

const (
	// ChatHistoryLimit caps how many messages a chat listing returns.
	ChatHistoryLimit = 500
	// AnnouncementLimit caps how many announcements a listing returns.
	AnnouncementLimit = 100

	userAvatarBase  = "https://api.dicebear.com/7.x/avataaars/svg?seed="
	adminAvatarBase = "https://api.dicebear.com/7.x/bottts/svg?seed="
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	JWTSecret   string
	Store       store.Store
	Sessions    store.SessionStore

	// Admins defaults to DefaultAdmins when empty.
	Admins AdminDirectory
	Now    func() time.Time
	NewID  func() string
}

// App is the core application service wiring together storage and auth logic.
type App struct {
	store    store.Store
	sessions store.SessionStore
	admins   AdminDirectory
	now      func() time.Time
	newID    func() string
}

// New constructs the application with storage and session management.
func New(cfg Config) (*App, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = util.NewID
	}
	if cfg.Admins.Len() == 0 {
		cfg.Admins = DefaultAdmins()
	}

	dataStore := cfg.Store
	if dataStore == nil {
		var err error
		dataStore, err = openStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		jwtStore, err := store.NewJWTSessionStore(cfg.JWTSecret, store.JWTOptions{Now: cfg.Now})
		if err != nil {
			return nil, fmt.Errorf("init jwt session store: %w", err)
		}
		sessionStore = jwtStore
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		admins:   cfg.Admins,
		now:      cfg.Now,
		newID:    cfg.NewID,
	}, nil
}

func openStore(databaseURL string) (store.Store, error) {
	switch strings.TrimSpace(databaseURL) {
	case "":
		return nil, fmt.Errorf("database URL required")
	case "memory":
		return store.NewMemoryStore(), nil
	}
	gormStore, err := store.NewGormStore(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init postgres store: %w", err)
	}
	return gormStore, nil
}

// Close releases the store connection.
func (a *App) Close() error {
	return a.store.Close()
}

func (a *App) timestamp() time.Time {
	return a.now().UTC()
}

func userAvatar(username string) string {
	return userAvatarBase + url.QueryEscape(username)
}

func adminAvatar(username string) string {
	return adminAvatarBase + url.QueryEscape(username)
}
