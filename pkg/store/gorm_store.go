package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"tfdcommunity/pkg/domain"
)

const migrateLockID int64 = 51877345

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&UserModel{}, &ChatMessageModel{}, &AnnouncementModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// CreateUser inserts a new user. A username collision returns ErrDuplicateUsername.
func (s *GormStore) CreateUser(ctx context.Context, u domain.User) error {
	model := userToModel(u)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// GetUserByUsername looks up a user by exact username.
func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	return s.firstUser(ctx, "username = ?", username)
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(ctx context.Context, id string) (domain.User, bool, error) {
	return s.firstUser(ctx, "id = ?", id)
}

func (s *GormStore) firstUser(ctx context.Context, query string, arg any) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) SetOnlineStatus(ctx context.Context, id string, online bool) error {
	return s.updateUser(ctx, id, "online_status", online)
}

func (s *GormStore) SetProfilePicture(ctx context.Context, id, value string) error {
	return s.updateUser(ctx, id, "profile_picture", value)
}

func (s *GormStore) SetRole(ctx context.Context, id string, role domain.UserRole) error {
	return s.updateUser(ctx, id, "role", string(role))
}

func (s *GormStore) updateUser(ctx context.Context, id, column string, value any) error {
	return s.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", id).
		Update(column, value).Error
}

// CountOnlineUsers returns the number of users flagged online.
func (s *GormStore) CountOnlineUsers(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&UserModel{}).Where("online_status = ?", true).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// AppendChatMessage stores a chat message.
func (s *GormStore) AppendChatMessage(ctx context.Context, msg domain.ChatMessage) error {
	model := chatMessageToModel(msg)
	return s.db.WithContext(ctx).Create(&model).Error
}

// ListChatMessages returns up to limit messages ordered by timestamp ascending.
func (s *GormStore) ListChatMessages(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	var models []ChatMessageModel
	q := s.db.WithContext(ctx).Order("timestamp ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ChatMessage, 0, len(models))
	for _, m := range models {
		res = append(res, chatMessageFromModel(m))
	}
	return res, nil
}

// CreateAnnouncement stores an announcement.
func (s *GormStore) CreateAnnouncement(ctx context.Context, a domain.Announcement) error {
	model := announcementToModel(a)
	return s.db.WithContext(ctx).Create(&model).Error
}

// ListAnnouncements returns up to limit announcements ordered by timestamp descending.
func (s *GormStore) ListAnnouncements(ctx context.Context, limit int) ([]domain.Announcement, error) {
	var models []AnnouncementModel
	q := s.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Announcement, 0, len(models))
	for _, m := range models {
		res = append(res, announcementFromModel(m))
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:             u.ID,
		Username:       u.Username,
		Nickname:       u.Nickname,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		ProfilePicture: u.ProfilePicture,
		OnlineStatus:   u.OnlineStatus,
		CreatedAt:      u.CreatedAt.UTC(),
	}
}

func userFromModel(m UserModel) domain.User {
	role := domain.UserRole(m.Role)
	if role == "" {
		role = domain.RoleUser
	}
	return domain.User{
		ID:             m.ID,
		Username:       m.Username,
		Nickname:       m.Nickname,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		Role:           role,
		ProfilePicture: m.ProfilePicture,
		OnlineStatus:   m.OnlineStatus,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

func chatMessageToModel(msg domain.ChatMessage) ChatMessageModel {
	return ChatMessageModel{
		ID:             msg.ID,
		UserID:         msg.UserID,
		Username:       msg.Username,
		Nickname:       msg.Nickname,
		ProfilePicture: msg.ProfilePicture,
		Message:        msg.Message,
		Timestamp:      msg.Timestamp.UTC(),
	}
}

func chatMessageFromModel(m ChatMessageModel) domain.ChatMessage {
	return domain.ChatMessage{
		ID:             m.ID,
		UserID:         m.UserID,
		Username:       m.Username,
		Nickname:       m.Nickname,
		ProfilePicture: m.ProfilePicture,
		Message:        m.Message,
		Timestamp:      m.Timestamp.UTC(),
	}
}

func announcementToModel(a domain.Announcement) AnnouncementModel {
	return AnnouncementModel{
		ID:            a.ID,
		AdminID:       a.AdminID,
		AdminName:     a.AdminName,
		AdminNickname: a.AdminNickname,
		Title:         a.Title,
		Content:       a.Content,
		ImageData:     a.ImageData,
		Timestamp:     a.Timestamp.UTC(),
	}
}

func announcementFromModel(m AnnouncementModel) domain.Announcement {
	return domain.Announcement{
		ID:            m.ID,
		AdminID:       m.AdminID,
		AdminName:     m.AdminName,
		AdminNickname: m.AdminNickname,
		Title:         m.Title,
		Content:       m.Content,
		ImageData:     m.ImageData,
		Timestamp:     m.Timestamp.UTC(),
	}
}
