package uploadsvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/limaudio/taskman/internal/infra/logging"
	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
)

// ErrNoFile is returned when the multipart body carries no file part.
var ErrNoFile = errors.New("no file")

const maxUploadBytes = 32 << 20

// HTTPTransport exposes file upload over HTTP.
type HTTPTransport struct {
	uploadSvc *UploadService
	log       logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(uploadSvc *UploadService) *HTTPTransport {
	return &HTTPTransport{
		uploadSvc: uploadSvc,
		log:       logging.GetLogger("svc.uploadsvc.http_transport"),
	}
}

// RegisterRoutes mounts the upload endpoint:
// - POST /upload: store a multipart file upload.
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle(http.MethodPost, "/upload", ht.HandleUpload)
}

// HandleUpload stores a multipart file upload.
// Expects a multipart form with a "file" part; responds 201 with file_name,
// file_url, hash and, for images, thumbnail_url.
func (ht *HTTPTransport) HandleUpload(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleUpload(w, r)
}

func (ht *HTTPTransport) handleUpload(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "upload failed", "error", err)
		} else {
			log.InfoContext(ctx, "file uploaded")
		}
	}(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http_.Error(w, http.StatusUnprocessableEntity, "file is required")

		return fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http_.Error(w, http.StatusUnprocessableEntity, "file is required")

		return fmt.Errorf("read file part: %w", errors.Join(ErrNoFile, err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("read upload: %w", err)
	}

	upload, err := ht.uploadSvc.Store(r.Context(), header.Filename, data)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("store upload: %w", err)
	}

	log = log.With(logging.Group("upload", "name", header.Filename, "bytes", len(data)))
	http_.JSON(w, http.StatusCreated, upload)

	return nil
}
