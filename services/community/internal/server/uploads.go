package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"tfdcommunity/internal/util"
	"tfdcommunity/pkg/domain"
)

const uploadFormField = "file"

// Stored images are served from imageRoutePrefix + key, where key is
// images/<userID>/<id><ext>.
const (
	imageRoutePrefix = "/api/uploads/"
	imageKeyPrefix   = "images/"
)

// multipart framing allowance on top of the file size cap
const multipartOverheadBytes = 64 << 10

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type uploadResponse struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

func (s *Server) handleImageUpload(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if s.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}
	data, status, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, "Only PNG, JPEG, GIF and WebP images are accepted")
		return
	}

	ctx := r.Context()
	key := fmt.Sprintf("%s%s/%s%s", imageKeyPrefix, user.ID, util.NewID(), ext)
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		util.LoggerFromContext(ctx).Error("image upload failed", "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, detailInternal)
		return
	}
	util.LoggerFromContext(ctx).Info("image uploaded", "key", key, "size", len(data), "content_type", contentType)
	writeJSON(w, http.StatusOK, uploadResponse{URL: imageRoutePrefix + key, Key: key, ContentType: contentType, Size: len(data)})
}

// handleImage redirects to a freshly presigned link for a stored image.
// It is public so the stored URL works in an <img> tag.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	if s.objects == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}
	key, ok := imageKeyFromPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, detailNotFound)
		return
	}
	ctx := r.Context()
	exists, err := s.objects.Exists(ctx, key)
	if err != nil {
		util.LoggerFromContext(ctx).Error("image lookup failed", "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, detailInternal)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, detailNotFound)
		return
	}
	url, err := s.objects.PresignGet(ctx, key, s.presignTTL)
	if err != nil {
		util.LoggerFromContext(ctx).Error("image presign failed", "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, detailInternal)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, url, http.StatusFound)
}

// imageKeyFromPath accepts only keys shaped like the ones uploads create.
func imageKeyFromPath(p string) (string, bool) {
	key := strings.TrimPrefix(p, imageRoutePrefix)
	if !strings.HasPrefix(key, imageKeyPrefix) {
		return "", false
	}
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", false
	}
	for _, part := range parts[1:] {
		if part == "" || part == "." || part == ".." {
			return "", false
		}
	}
	ext := path.Ext(parts[2])
	for _, known := range imageExtensions {
		if ext == known {
			return key, true
		}
	}
	return "", false
}

// readUpload returns the bytes of the "file" part, enforcing the size cap.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploadMaxBytes+multipartOverheadBytes)
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, http.StatusUnprocessableEntity, errors.New("multipart/form-data body required")
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, http.StatusUnprocessableEntity, errors.New("file: field required")
		}
		if err != nil {
			return nil, uploadReadStatus(err), uploadReadError(err)
		}
		if part.FormName() != uploadFormField {
			_ = part.Close()
			continue
		}
		data, err := io.ReadAll(io.LimitReader(part, s.uploadMaxBytes+1))
		_ = part.Close()
		if err != nil {
			return nil, uploadReadStatus(err), uploadReadError(err)
		}
		if int64(len(data)) > s.uploadMaxBytes {
			return nil, http.StatusRequestEntityTooLarge, errTooLarge(s.uploadMaxBytes)
		}
		if len(data) == 0 {
			return nil, http.StatusUnprocessableEntity, errors.New("file: empty upload")
		}
		return data, http.StatusOK, nil
	}
}

func uploadReadStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusUnprocessableEntity
}

func uploadReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errors.New("Upload too large")
	}
	return errors.New("malformed multipart body")
}

func errTooLarge(limit int64) error {
	return fmt.Errorf("Image exceeds the %d byte limit", limit)
}
