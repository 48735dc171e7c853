package server

import (
	"context"
	"net/http"

	"tfdcommunity/pkg/domain"
	"tfdcommunity/services/community/internal/app"
)

type registerRequest struct {
	Username *string `json:"username"`
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        domain.User `json:"user"`
}

func newTokenResponse(sess app.Session) tokenResponse {
	return tokenResponse{AccessToken: sess.Token, TokenType: "bearer", User: sess.User}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	if err := required(
		field{"username", req.Username},
		field{"nickname", req.Nickname},
		field{"password", req.Password},
	); err != nil {
		writeAppError(w, r, err)
		return
	}
	sess, err := s.app.Register(r.Context(), app.RegisterInput{
		Username: *req.Username,
		Nickname: *req.Nickname,
		Email:    req.Email,
		Password: *req.Password,
	})
	if err != nil {
		s.audit(r, "auth.register", "fail", "username", *req.Username, "reason", err.Error())
		writeAppError(w, r, err)
		return
	}
	s.audit(r, "auth.register", "success", "user_id", sess.User.ID)
	writeJSON(w, http.StatusOK, newTokenResponse(sess))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.handleCredentialLogin(w, r, "auth.login", s.app.Login)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	s.handleCredentialLogin(w, r, "auth.admin_login", s.app.AdminLogin)
}

type loginFunc func(ctx context.Context, username, password string) (app.Session, error)

func (s *Server) handleCredentialLogin(w http.ResponseWriter, r *http.Request, event string, login loginFunc) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	if err := required(field{"username", req.Username}, field{"password", req.Password}); err != nil {
		writeAppError(w, r, err)
		return
	}
	sess, err := login(r.Context(), *req.Username, *req.Password)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			s.audit(r, event, "fail", "username", *req.Username)
		}
		writeAppError(w, r, err)
		return
	}
	s.audit(r, event, "success", "user_id", sess.User.ID, "role", string(sess.User.Role))
	writeJSON(w, http.StatusOK, newTokenResponse(sess))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if err := s.app.Logout(r.Context(), user); err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
