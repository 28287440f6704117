package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/BerylCAtieno/documind/internal/intake"
	"github.com/BerylCAtieno/documind/internal/models"
	"github.com/BerylCAtieno/documind/internal/services"
	"github.com/BerylCAtieno/documind/internal/utils"
	"github.com/gorilla/mux"
)

// multipartOverhead is allowed on top of the file limit for form framing.
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	service     services.DocumentService
	maxFileSize int64
	logger      *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *DocumentHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	respondJSON(h.logger, w, http.StatusCreated, h.service.CreateSession())
}

func (h *DocumentHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetSession(mux.Vars(r)["id"])
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, snap)
}

func (h *DocumentHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CloseSession(mux.Vars(r)["id"]); err != nil {
		respondError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) DismissNotices(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DismissNotices(mux.Vars(r)["id"]); err != nil {
		respondError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	tooLarge := utils.NewValidationError(intake.SizeLimitMessage(h.maxFileSize))

	if r.ContentLength > h.maxFileSize+multipartOverhead {
		respondError(h.logger, w, h.service.RejectUpload(id, r.ContentLength, tooLarge))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(h.logger, w, h.service.RejectUpload(id, maxErr.Limit, tooLarge))
			return
		}
		respondError(h.logger, w, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(h.logger, w, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	// one extra byte lets intake see that the limit was crossed
	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(h.logger, w, utils.NewInternalError("Failed to read file"))
		return
	}

	h.logger.Info("File upload attempt", "session_id", id, "filename", header.Filename, "size", len(data))

	resp, err := h.service.UploadDocument(r.Context(), id, &models.UploadRequest{
		File:     data,
		Filename: header.Filename,
	})
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	respondJSON(h.logger, w, http.StatusCreated, resp)
}

func (h *DocumentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	length := 0
	if v := r.URL.Query().Get("length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(h.logger, w, utils.NewBadRequestError("length must be a non-negative integer"))
			return
		}
		length = n
	}

	preview, err := h.service.Preview(mux.Vars(r)["id"], length)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, preview)
}

func (h *DocumentHandler) Debug(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Debug(mux.Vars(r)["id"])
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, info)
}

func (h *DocumentHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}
	if req.Task == "" {
		req.Task = models.TaskSummary
	}
	req.APIKey = r.Header.Get(APIKeyHeader)

	resp, err := h.service.AnalyzeDocument(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, resp)
}

func (h *DocumentHandler) RunAdvanced(w http.ResponseWriter, r *http.Request) {
	var opts models.GenerationOptions
	if err := decodeJSON(r, &opts); err != nil {
		respondError(h.logger, w, err)
		return
	}
	opts.APIKey = r.Header.Get(APIKeyHeader)

	resp, err := h.service.RunAdvanced(r.Context(), mux.Vars(r)["id"], opts)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, resp)
}

func (h *DocumentHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(h.logger, w, err)
		return
	}
	req.APIKey = r.Header.Get(APIKeyHeader)

	resp, err := h.service.Chat(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, resp)
}

func (h *DocumentHandler) Export(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	export, key, err := h.service.Export(r.Context(), vars["id"], vars["kind"])
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	if key != "" {
		w.Header().Set("X-Archive-Key", key)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Content); err != nil {
		h.logger.Error("Failed to write export", "error", err)
	}
}

func (h *DocumentHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	data, err := h.service.DownloadArchive(r.Context(), vars["id"], vars["filename"])
	if err != nil {
		respondError(h.logger, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", vars["filename"]))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *DocumentHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(h.logger, w, utils.NewBadRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.service.History(r.Context(), limit)
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, entries)
}

func (h *DocumentHandler) Reports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.Reports(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(h.logger, w, err)
		return
	}
	respondJSON(h.logger, w, http.StatusOK, reports)
}
