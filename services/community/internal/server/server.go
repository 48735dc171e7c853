package server

import (
	"net/http"
	"strings"
	"time"

	"tfdcommunity/internal/util"
	"tfdcommunity/pkg/domain"
	"tfdcommunity/pkg/storage"
	"tfdcommunity/services/community/internal/app"
	"tfdcommunity/services/community/internal/security"
)

const (
	serviceName       = "community"
	defaultPresignTTL = 15 * time.Minute
)

// Config wires required dependencies for the HTTP server.
// Image uploads are enabled only when Objects is non-nil. PresignTTL is the
// lifetime of each redirect link handed out for a stored image.
type Config struct {
	App            *app.App
	Alerter        *security.AuditAlerter
	CORSOrigins    []string
	TrustedProxies *util.TrustedProxies
	Objects        storage.ObjectStore
	UploadMaxBytes int64
	PresignTTL     time.Duration
}

// Server exposes the community HTTP API.
type Server struct {
	app            *app.App
	alerter        *security.AuditAlerter
	cors           util.CORSPolicy
	trustedProxies *util.TrustedProxies
	objects        storage.ObjectStore
	uploadMaxBytes int64
	presignTTL     time.Duration
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 5 << 20
	}
	if cfg.PresignTTL <= 0 || cfg.PresignTTL > storage.MaxPresignExpiry {
		cfg.PresignTTL = defaultPresignTTL
	}
	s := &Server{
		app:            cfg.App,
		alerter:        cfg.Alerter,
		cors:           util.NewCORSPolicy(cfg.CORSOrigins),
		trustedProxies: cfg.TrustedProxies,
		objects:        cfg.Objects,
		uploadMaxBytes: cfg.UploadMaxBytes,
		presignTTL:     cfg.PresignTTL,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the handler with middleware applied.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithCORS(s.cors, h)
	h = util.WithSecurityHeaders(h)
	h = util.WithRequestLog(serviceName, h)
	return util.WithRequestID(h)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/admin-login", s.handleAdminLogin)
	s.mux.Handle("/api/auth/logout", s.authenticated(s.handleLogout))

	// users
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))
	s.mux.HandleFunc("/api/users/online-count", s.handleOnlineCount)
	s.mux.Handle("/api/users/profile-picture", s.authenticated(s.handleProfilePicture))

	// feeds
	s.mux.Handle("/api/chat/messages", s.authenticated(s.handleChatMessages))
	s.mux.Handle("/api/announcements", s.authenticated(s.handleAnnouncements))

	s.mux.Handle("/api/uploads/images", s.authenticated(s.handleImageUpload))
	s.mux.HandleFunc(imageRoutePrefix+imageKeyPrefix, s.handleImage)

	s.mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, detailNotFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrapper
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

// authenticated is the only guard for protected routes.
func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.audit(r, "auth.authorize", "fail", "reason", "missing_bearer")
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, detailNotAuthenticated)
			return
		}
		user, err := s.app.UserFromToken(r.Context(), token)
		if err != nil {
			if statusFor(err) == http.StatusUnauthorized {
				s.audit(r, "auth.authorize", "fail", "reason", err.Error())
			}
			writeAppError(w, r, err)
			return
		}
		ctx := util.ContextWithLogger(r.Context(), util.LoggerFromContext(r.Context()).With("user_id", user.ID))
		next(w, r.WithContext(ctx), user)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// audit logs a security event and feeds failures to the alerter.
func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	ip := util.ClientIP(r, s.trustedProxies)
	logger := util.LoggerFromContext(r.Context())
	logAttrs := append([]any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", ip,
	}, attrs...)
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
	} else {
		logger.Warn("security_event", logAttrs...)
	}

	result, err := s.alerter.Observe(r.Context(), event, outcome, ip)
	if err != nil {
		logger.Warn("security_alert_observe_failed", "event", event, "err", err)
		return
	}
	if result.Triggered {
		logger.Error("security_alert",
			"event", event,
			"outcome", outcome,
			"ip", ip,
			"count", result.Count,
			"threshold", result.Threshold,
			"window", result.Window.String(),
		)
	}
}
