package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/internal/api"
	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/files/internal/service"
)

const defaultSignedTTL = time.Hour

type FileHandler struct {
	fileService service.FileServiceInterface
	maxBytes    int64
}

func NewFileHandler(fileService service.FileServiceInterface, maxBytes int64) *FileHandler {
	return &FileHandler{fileService: fileService, maxBytes: maxBytes}
}

func (h *FileHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrFileNotFound):
		api.WriteNotFound(w, r, err.Error())
	case errors.Is(err, service.ErrInvalidBucket),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrNotImage),
		errors.Is(err, service.ErrEmptyFile),
		errors.Is(err, service.ErrInvalidTTL):
		api.WriteBadRequest(w, r, err.Error())
	case errors.Is(err, service.ErrFileExists):
		api.WriteError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTooLarge):
		api.WriteError(w, r, http.StatusRequestEntityTooLarge, err.Error())
	default:
		logger.ErrorCtx(r.Context(), "File request failed", "path", r.URL.Path, "error", err.Error())
		api.WriteInternalServerError(w, r, "file storage failure")
	}
}

// POST /v1/file/{bucket}
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bucket := chi.URLParam(r, "bucket")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		logger.WarnCtx(ctx, "Failed to parse multipart form", "error", err.Error())
		api.WriteBadRequest(w, r, "invalid file upload request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.WriteBadRequest(w, r, "file is required")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	logger.InfoCtx(ctx, "File upload",
		"bucket", bucket,
		"name", name,
		"size", header.Size,
		"content_type", header.Header.Get("Content-Type"),
	)

	f, err := h.fileService.Upload(ctx, service.UploadInput{
		Bucket:      bucket,
		Name:        name,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.WriteCreated(w, r, f)
}

// GET /v1/file/{fileId}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		api.WriteBadRequest(w, r, "invalid file ID format")
		return
	}

	f, err := h.fileService.GetFile(r.Context(), fileID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.WriteSuccess(w, r, f)
}

// DELETE /v1/file/{bucket}/{name}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	bucket, name := chi.URLParam(r, "bucket"), chi.URLParam(r, "name")

	if err := h.fileService.Remove(r.Context(), bucket, name); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/file/{bucket}/{name}/signed?ttl=1h
func (h *FileHandler) SignedURL(w http.ResponseWriter, r *http.Request) {
	bucket, name := chi.URLParam(r, "bucket"), chi.URLParam(r, "name")

	ttl := defaultSignedTTL
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			api.WriteBadRequest(w, r, "invalid ttl")
			return
		}
		ttl = d
	}

	signed, err := h.fileService.SignedURL(r.Context(), bucket, name, ttl)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	api.WriteSuccess(w, r, signed)
}
