package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lumilearn/documentflow/internal/models"
)

// API exposes the materials operations over HTTP: uploads and deletes from
// the teacher UI, listings for the polling reader, and the status callbacks
// the conversion service uses to drive a document through the pipeline.
type API struct {
	records  *RecordManager
	uploader *Uploader
	mux      *http.ServeMux
}

// NewAPI creates the HTTP surface over the given services.
func NewAPI(records *RecordManager, uploader *Uploader) *API {
	a := &API{
		records:  records,
		uploader: uploader,
		mux:      http.NewServeMux(),
	}
	a.mux.HandleFunc("POST /courses/{courseId}/documents", a.handleUpload)
	a.mux.HandleFunc("GET /courses/{courseId}/documents", a.handleList)
	a.mux.HandleFunc("DELETE /documents/{id}", a.handleDelete)
	a.mux.HandleFunc("PATCH /documents/{id}", a.handleUpdateStatus)
	a.mux.HandleFunc("PUT /documents/{id}", a.handleReplace)
	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// handleUpload accepts a multipart form with a "file" part plus optional
// courseTitle/courseDescription fields used when the course is created on
// first upload.
func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("courseId")

	if err := r.ParseMultipartForm(MaxFileSizeBytes + 1024*1024); err != nil {
		respondError(w, http.StatusBadRequest, "could not parse multipart form", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file part", err)
		return
	}
	defer file.Close()

	result, err := a.uploader.Upload(r.Context(), UploadParams{
		CourseID:          courseID,
		CourseTitle:       r.FormValue("courseTitle"),
		CourseDescription: r.FormValue("courseDescription"),
		FileName:          header.Filename,
		MimeType:          header.Header.Get("Content-Type"),
		SizeBytes:         header.Size,
	}, file)
	switch {
	case errors.Is(err, ErrInvalidFileType), errors.Is(err, ErrFileTooLarge):
		respondError(w, http.StatusBadRequest, err.Error(), err)
		return
	case errors.Is(err, ErrUploadFailed):
		respondError(w, http.StatusBadGateway, "upload failed", err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "upload failed", err)
		return
	}

	respondJSON(w, http.StatusCreated, models.UploadResponse{
		Document:  result.Document,
		Type:      result.Document.MaterialType(),
		Overwrote: result.Overwrote,
	})
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := a.records.ListByCourse(r.Context(), r.PathValue("courseId"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list documents", err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	respondJSON(w, http.StatusOK, models.ListDocumentsResponse{Documents: docs})
}

func (a *API) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.uploader.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateStatus is the conversion service's callback. Unlike the
// trigger path, a missing record here is a hard failure surfaced to the
// caller.
func (a *API) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "could not parse JSON body", err)
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	err = a.records.UpdateStatus(r.Context(), r.PathValue("id"), status, req.StoragePath, req.ErrorDetails)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		respondError(w, http.StatusNotFound, "document not found", err)
	case errors.Is(err, ErrIllegalTransition):
		respondError(w, http.StatusConflict, err.Error(), err)
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to update status", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) handleReplace(w http.ResponseWriter, r *http.Request) {
	var req models.ReplaceDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "could not parse JSON body", err)
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	err = a.records.UpdateFields(r.Context(), r.PathValue("id"), &models.Document{
		FileName:    req.FileName,
		MimeType:    req.MimeType,
		SizeBytes:   req.SizeBytes,
		StoragePath: req.StoragePath,
		Status:      status,
	})
	switch {
	case errors.Is(err, ErrRecordNotFound):
		respondError(w, http.StatusNotFound, "document not found", err)
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to update document", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to marshal response", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func respondError(w http.ResponseWriter, code int, message string, err error) {
	slog.Error(message, "http_status", code, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: message})
}
