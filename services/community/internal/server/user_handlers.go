package server

import (
	"net/http"

	"tfdcommunity/pkg/domain"
)

type profilePictureRequest struct {
	ProfilePicture *string `json:"profile_picture"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleOnlineCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	n, err := s.app.OnlineCount(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"online_count": n})
}

func (s *Server) handleProfilePicture(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}
	var req profilePictureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, r, err)
		return
	}
	if err := required(field{"profile_picture", req.ProfilePicture}); err != nil {
		writeAppError(w, r, err)
		return
	}
	updated, err := s.app.UpdateProfilePicture(r.Context(), user, *req.ProfilePicture)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
