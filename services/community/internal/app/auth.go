package app

import (
	"context"
	"errors"
	"fmt"

	"tfdcommunity/pkg/auth"
	"tfdcommunity/pkg/domain"
	"tfdcommunity/pkg/store"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string
	Nickname string
	Email    *string
	Password string
}

// Session is a freshly issued token together with its owner.
type Session struct {
	Token string
	User  domain.User
}

// Register creates a user who is online from the start and issues a token.
func (a *App) Register(ctx context.Context, in RegisterInput) (Session, error) {
	_, exists, err := a.store.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return Session{}, fmt.Errorf("fetch user: %w", err)
	}
	if exists {
		return Session{}, ErrUsernameTaken
	}
	passwordHash, err := hashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}
	user := domain.User{
		ID:             a.newID(),
		Username:       in.Username,
		Nickname:       in.Nickname,
		Email:          in.Email,
		PasswordHash:   passwordHash,
		Role:           domain.RoleUser,
		ProfilePicture: userAvatar(in.Username),
		OnlineStatus:   true,
		CreatedAt:      a.timestamp(),
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return Session{}, ErrUsernameTaken
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	return a.issue(user)
}

// Login checks credentials and marks the user online.
// Failures never touch the stored presence flag.
func (a *App) Login(ctx context.Context, username, password string) (Session, error) {
	user, ok, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return Session{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	if err := a.store.SetOnlineStatus(ctx, user.ID, true); err != nil {
		return Session{}, fmt.Errorf("set online: %w", err)
	}
	user.OnlineStatus = true
	return a.issue(user)
}

// AdminLogin authenticates against the fixed admin table. The user record is
// created on first login and otherwise has its role reset to the table's value.
func (a *App) AdminLogin(ctx context.Context, username, password string) (Session, error) {
	acc, ok := a.admins.Authenticate(username, password)
	if !ok {
		return Session{}, ErrInvalidAdminCredentials
	}
	user, exists, err := a.store.GetUserByUsername(ctx, acc.Username)
	if err != nil {
		return Session{}, fmt.Errorf("fetch user: %w", err)
	}
	if !exists {
		user, err = a.createAdminUser(ctx, acc)
		if err == nil {
			return a.issue(user)
		}
		if !errors.Is(err, store.ErrDuplicateUsername) {
			return Session{}, err
		}
		// lost a race with a concurrent first login
		user, exists, err = a.store.GetUserByUsername(ctx, acc.Username)
		if err != nil {
			return Session{}, fmt.Errorf("fetch user: %w", err)
		}
		if !exists {
			return Session{}, ErrUserNotFound
		}
	}
	if err := a.store.SetRole(ctx, user.ID, acc.Role); err != nil {
		return Session{}, fmt.Errorf("set role: %w", err)
	}
	if err := a.store.SetOnlineStatus(ctx, user.ID, true); err != nil {
		return Session{}, fmt.Errorf("set online: %w", err)
	}
	user.Role = acc.Role
	user.OnlineStatus = true
	return a.issue(user)
}

func (a *App) createAdminUser(ctx context.Context, acc AdminAccount) (domain.User, error) {
	passwordHash, err := hashPassword(acc.Password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		ID:             a.newID(),
		Username:       acc.Username,
		Nickname:       acc.Nickname,
		PasswordHash:   passwordHash,
		Role:           acc.Role,
		ProfilePicture: adminAvatar(acc.Username),
		OnlineStatus:   true,
		CreatedAt:      a.timestamp(),
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("create admin user: %w", err)
	}
	return user, nil
}

// Logout marks the user offline.
func (a *App) Logout(ctx context.Context, user domain.User) error {
	if err := a.store.SetOnlineStatus(ctx, user.ID, false); err != nil {
		return fmt.Errorf("set offline: %w", err)
	}
	return nil
}

// UserFromToken resolves the bearer token to a stored user.
func (a *App) UserFromToken(ctx context.Context, token string) (domain.User, error) {
	userID, err := a.sessions.GetUserIDByToken(token)
	if err != nil {
		if errors.Is(err, store.ErrTokenExpired) {
			return domain.User{}, ErrTokenExpired
		}
		return domain.User{}, ErrInvalidToken
	}
	user, ok, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfilePicture stores a new picture reference and returns the updated user.
func (a *App) UpdateProfilePicture(ctx context.Context, user domain.User, value string) (domain.User, error) {
	if err := a.store.SetProfilePicture(ctx, user.ID, value); err != nil {
		return domain.User{}, fmt.Errorf("set profile picture: %w", err)
	}
	updated, ok, err := a.store.GetUserByID(ctx, user.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return updated, nil
}

// OnlineCount returns how many users are flagged online.
func (a *App) OnlineCount(ctx context.Context) (int, error) {
	n, err := a.store.CountOnlineUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("count online users: %w", err)
	}
	return n, nil
}

func (a *App) issue(user domain.User) (Session, error) {
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", invalidField("password", err.Error())
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
