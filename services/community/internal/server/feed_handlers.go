package server

import (
	"net/http"

	"tfdcommunity/pkg/domain"
	"tfdcommunity/services/community/internal/app"
)

type chatMessageRequest struct {
	Message *string `json:"message"`
}

type announcementRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	ImageData *string `json:"image_data"`
}

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		msgs, err := s.app.ListChatMessages(r.Context())
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	case http.MethodPost:
		var req chatMessageRequest
		if err := decodeJSON(r, &req); err != nil {
			writeAppError(w, r, err)
			return
		}
		if err := required(field{"message", req.Message}); err != nil {
			writeAppError(w, r, err)
			return
		}
		msg, err := s.app.SendChatMessage(r.Context(), user, *req.Message)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.app.ListAnnouncements(r.Context())
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req announcementRequest
		if err := decodeJSON(r, &req); err != nil {
			writeAppError(w, r, err)
			return
		}
		if err := required(field{"title", req.Title}, field{"content", req.Content}); err != nil {
			writeAppError(w, r, err)
			return
		}
		ann, err := s.app.CreateAnnouncement(r.Context(), user, app.AnnouncementInput{
			Title:     *req.Title,
			Content:   *req.Content,
			ImageData: req.ImageData,
		})
		if err != nil {
			if statusFor(err) == http.StatusForbidden {
				s.audit(r, "announcements.create", "forbidden", "role", string(user.Role))
			}
			writeAppError(w, r, err)
			return
		}
		s.audit(r, "announcements.create", "success", "announcement_id", ann.ID)
		writeJSON(w, http.StatusOK, ann)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}
