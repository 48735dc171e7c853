package store

import "time"

// GORM models used for persistence.
type UserModel struct {
	ID             string    `gorm:"primaryKey"`
	Username       string    `gorm:"uniqueIndex;not null"`
	Nickname       string    `gorm:"not null"`
	Email          *string   `gorm:"default:null"`
	PasswordHash   string    `gorm:"not null"`
	Role           string    `gorm:"not null;default:user"`
	ProfilePicture string    `gorm:"type:text"`
	OnlineStatus   bool      `gorm:"not null;default:false;index"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type ChatMessageModel struct {
	ID             string    `gorm:"primaryKey"`
	UserID         string    `gorm:"not null;index"`
	Username       string    `gorm:"not null"`
	Nickname       string    `gorm:"not null"`
	ProfilePicture string    `gorm:"type:text"`
	Message        string    `gorm:"type:text;not null"`
	Timestamp      time.Time `gorm:"not null;index"`
}

func (ChatMessageModel) TableName() string { return "chat_messages" }

type AnnouncementModel struct {
	ID            string    `gorm:"primaryKey"`
	AdminID       string    `gorm:"not null;index"`
	AdminName     string    `gorm:"not null"`
	AdminNickname string    `gorm:"not null"`
	Title         string    `gorm:"not null"`
	Content       string    `gorm:"type:text;not null"`
	ImageData     *string   `gorm:"type:text"`
	Timestamp     time.Time `gorm:"not null;index"`
}

func (AnnouncementModel) TableName() string { return "announcements" }
