package util

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders = "Authorization, Content-Type, X-Request-Id"
	corsAllowMethods = "GET, POST, PUT, OPTIONS"
)

// CORSPolicy is an origin allowlist. A "*" entry allows any origin.
type CORSPolicy struct {
	any     bool
	origins map[string]struct{}
}

// NewCORSPolicy builds a policy from configured origins. Blank entries are ignored.
func NewCORSPolicy(origins []string) CORSPolicy {
	p := CORSPolicy{origins: make(map[string]struct{}, len(origins))}
	for _, raw := range origins {
		origin := strings.TrimRight(strings.TrimSpace(raw), "/")
		switch origin {
		case "":
			continue
		case "*":
			p.any = true
		default:
			p.origins[origin] = struct{}{}
		}
	}
	return p
}

// Allows reports whether the origin may make credentialed cross-origin calls.
func (p CORSPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.any {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// WithCORS echoes allowed origins with credentials and answers preflight requests.
func WithCORS(policy CORSPolicy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if policy.Allows(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
