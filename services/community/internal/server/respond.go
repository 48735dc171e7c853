package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"tfdcommunity/internal/util"
	"tfdcommunity/services/community/internal/app"
)

const (
	maxJSONBodyBytes = 10 << 20

	detailInternal         = "Internal server error"
	detailNotAuthenticated = "Not authenticated"
	detailMethodNotAllowed = "Method Not Allowed"
	detailNotFound         = "Not Found"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}

// decodeJSON reads exactly one size-limited JSON value into dst.
func decodeJSON(r *http.Request, dst any) error {
	invalid := &app.ValidationError{Field: "body", Msg: "invalid JSON body"}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return invalid
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return invalid
	}
	return nil
}

type field struct {
	name  string
	value *string
}

// required returns a validation error naming every absent field.
func required(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &app.ValidationError{Field: strings.Join(missing, ", "), Msg: "field required"}
}

// statusFor maps app errors to HTTP status codes.
func statusFor(err error) int {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrUsernameTaken):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrInvalidAdminCredentials),
		errors.Is(err, app.ErrTokenExpired),
		errors.Is(err, app.ErrInvalidToken),
		errors.Is(err, app.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err with its mapped status. Unknown errors are logged and hidden.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		util.LoggerFromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		writeError(w, status, detailInternal)
		return
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, detailMethodNotAllowed)
}
