package compress

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iautomae/platform/internal/config"
	"github.com/iautomae/platform/pkg/handlers"
	"github.com/iautomae/platform/pkg/routes"
)

// Handler provides the compression endpoints.
type Handler struct {
	logger         *slog.Logger
	maxUploadSize  int64
	defaultQuality int
}

// NewHandler creates a compression handler with the specified configuration.
func NewHandler(cfg config.CompressionConfig, logger *slog.Logger) *Handler {
	return &Handler{
		logger:         logger.With("handler", "compress"),
		maxUploadSize:  cfg.MaxUploadSizeBytes(),
		defaultQuality: cfg.DefaultQuality,
	}
}

// Routes returns the compression route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/compress",
		Description: "Document weight reduction",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Compress},
			{Method: "POST", Pattern: "/estimate", Handler: h.Estimate},
		},
	}
}

// Compress transforms one uploaded file and streams the result back as
// an attachment.
func (h *Handler) Compress(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	opts, err := OptionsFromForm(r.MultipartForm.Value)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	if err := opts.Validate(h.defaultQuality); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	data := make([]byte, header.Size)
	if _, err := io.ReadFull(file, data); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)

	switch {
	case contentType == "application/pdf":
		output, err := CompressPDF(data, opts, h.logger)
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondBinary(w, "application/pdf", outputName(header.Filename, "pdf"), output)

	case strings.HasPrefix(contentType, "image/"):
		result, err := CompressImage(data, opts)
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		handlers.RespondBinary(w, result.ContentType, outputName(header.Filename, result.Extension), result.Data)

	default:
		handlers.RespondError(w, h.logger, http.StatusUnsupportedMediaType, ErrUnsupportedMedia)
	}
}

// Estimate predicts the output size for a prospective compression.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if req.SizeBytes <= 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidOptions)
		return
	}
	if req.Quality == 0 {
		req.Quality = h.defaultQuality
	}

	handlers.RespondJSON(w, http.StatusOK, EstimateSize(req))
}

func detectContentType(header string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

// outputName swaps the upload's extension for the output format's.
func outputName(filename, ext string) string {
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	if base == "" {
		base = "compressed"
	}
	return base + "." + ext
}
