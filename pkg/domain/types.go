package domain

import "time"

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleAdmin   UserRole = "admin"
	RoleFounder UserRole = "founder"
)

// CanAnnounce reports whether the role may publish announcements.
func (r UserRole) CanAnnounce() bool {
	return r == RoleAdmin || r == RoleFounder
}

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Nickname       string    `json:"nickname"`
	Email          *string   `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           UserRole  `json:"role"`
	ProfilePicture string    `json:"profile_picture"`
	OnlineStatus   bool      `json:"online_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatMessage carries a snapshot of the author taken when it was sent.
type ChatMessage struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	Nickname       string    `json:"nickname"`
	ProfilePicture string    `json:"profile_picture"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

type Announcement struct {
	ID            string    `json:"id"`
	AdminID       string    `json:"admin_id"`
	AdminName     string    `json:"admin_name"`
	AdminNickname string    `json:"admin_nickname"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ImageData     *string   `json:"image_data"`
	Timestamp     time.Time `json:"timestamp"`
}
