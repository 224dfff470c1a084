package profiles

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/iautomae/platform/internal/auth"
	"github.com/iautomae/platform/internal/storage"
	"github.com/iautomae/platform/pkg/handlers"
	"github.com/iautomae/platform/pkg/routes"
)

// maxLogoSize caps logo uploads at 2MB; brand marks are small assets.
const maxLogoSize = 2 << 20

// logoTypes maps accepted logo content types to stored file extensions.
var logoTypes = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// Handler provides HTTP endpoints for the authenticated user's own
// profile. Administrative profile mutations live under the admin routes.
type Handler struct {
	sys    System
	blobs  storage.System
	logger *slog.Logger
}

// NewHandler creates a profile handler with the specified configuration.
func NewHandler(sys System, blobs storage.System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		blobs:  blobs,
		logger: logger.With("handler", "profiles"),
	}
}

// Routes returns the profile endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/profiles",
		Description: "Authenticated user profile",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/me", Handler: h.Me},
			{Method: "GET", Pattern: "/me/logo", Handler: h.Logo},
			{Method: "PUT", Pattern: "/me/logo", Handler: h.UploadLogo},
			{Method: "DELETE", Pattern: "/me/logo", Handler: h.DeleteLogo},
		},
	}
}

// Me returns the caller's profile, creating a default unapproved record
// on first request so a fresh sign-in always resolves to a row.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}

	profile, err := h.sys.Ensure(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, profile)
}

// Logo streams the caller's stored brand logo.
func (h *Handler) Logo(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}

	profile, err := h.sys.FindByUserID(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if profile.LogoKey == nil {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotFound)
		return
	}

	data, err := h.blobs.Retrieve(r.Context(), *profile.LogoKey)
	if err != nil {
		status := http.StatusInternalServerError
		if err == storage.ErrNotFound {
			status = http.StatusNotFound
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}

	handlers.RespondBinary(w, contentTypeForKey(*profile.LogoKey), path.Base(*profile.LogoKey), data)
}

// UploadLogo stores a new brand logo for the caller and records its
// storage key on the profile.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}

	profile, err := h.sys.Ensure(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	ext, ok := logoTypes[contentType]
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnsupportedMediaType,
			fmt.Errorf("unsupported logo content type: %s", contentType))
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxLogoSize+1))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if len(data) > maxLogoSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
			fmt.Errorf("logo exceeds %d bytes", maxLogoSize))
		return
	}

	key := fmt.Sprintf("logos/%s.%s", userID, ext)
	if err := h.blobs.Store(r.Context(), key, data); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	// Drop a stale blob when the extension changed.
	if profile.LogoKey != nil && *profile.LogoKey != key {
		if err := h.blobs.Delete(r.Context(), *profile.LogoKey); err != nil {
			h.logger.Warn("failed to delete previous logo", "key", *profile.LogoKey, "error", err)
		}
	}

	updated, err := h.sys.SetLogo(r.Context(), profile.ID, &key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, updated)
}

// DeleteLogo removes the caller's brand logo and clears the profile key.
func (h *Handler) DeleteLogo(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return
	}

	profile, err := h.sys.FindByUserID(r.Context(), userID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if profile.LogoKey != nil {
		if err := h.blobs.Delete(r.Context(), *profile.LogoKey); err != nil {
			handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
			return
		}
	}

	updated, err := h.sys.SetLogo(r.Context(), profile.ID, nil)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, updated)
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
