package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lumilearn/documentflow/internal/models"
)

// ReactorConfig holds the reactor's settings.
type ReactorConfig struct {
	ConvertServiceBaseURL string

	// ConvertTimeout bounds the outbound notification so a hanging
	// conversion service cannot stall the trigger handler.
	ConvertTimeout time.Duration
}

// StorageObjectEvent is the payload of a GCS object event.
type StorageObjectEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// Reactor handles storage object events for course materials. On finalize it
// advances the matching document to UPLOADED and notifies the conversion
// service; on delete it cleans up the converted sibling artifact.
//
// Event delivery is at-least-once, so both handlers are idempotent, and
// best-effort failures are logged rather than returned: a failing handler
// would only cause redelivery of an event whose primary work is already done.
type Reactor struct {
	records    *RecordManager
	blobs      BlobStore
	httpClient *http.Client
	config     ReactorConfig
}

// NewReactor creates a Reactor over the given record manager and blob store.
func NewReactor(records *RecordManager, blobs BlobStore, config ReactorConfig) *Reactor {
	if config.ConvertTimeout <= 0 {
		config.ConvertTimeout = 10 * time.Second
	}
	return &Reactor{
		records:    records,
		blobs:      blobs,
		httpClient: &http.Client{Timeout: config.ConvertTimeout},
		config:     config,
	}
}

// HandleFinalized processes an object-finalized event. Objects outside the
// course material layout are ignored. A matching document is advanced to
// UPLOADED; a missing document is a benign race with the upload path (the
// record write may not be visible yet) and is logged, not failed. The
// conversion service is then notified regardless; a failed notification
// never rolls back the status advance and is not retried here.
func (r *Reactor) HandleFinalized(ctx context.Context, e StorageObjectEvent) error {
	mp, ok := models.ParseMaterialPath(e.Name)
	if !ok {
		slog.Debug("Ignoring non-material object", "objectPath", e.Name)
		return nil
	}

	logCtx := slog.With("courseId", mp.CourseID, "objectPath", e.Name)
	logCtx.Info("Material object finalized")

	doc, err := r.records.GetByPath(ctx, mp.CourseID, e.Name)
	switch {
	case err != nil:
		logCtx.Error("Failed to look up document for finalized object", "error", err)
	case doc == nil:
		logCtx.Warn("No document found for finalized object")
	default:
		if err := r.records.UpdateStatus(ctx, doc.ID, models.StatusUploaded, e.Name, ""); err != nil {
			logCtx.Error("Failed to update document status to UPLOADED", "documentId", doc.ID, "error", err)
		}
	}

	if err := r.notifyConverter(ctx, models.GCSUri(e.Bucket, e.Name)); err != nil {
		logCtx.Error("Conversion service notification failed", "error", err)
	}
	return nil
}

// notifyConverter POSTs the finalized object's gs:// reference to the
// conversion service's /convert endpoint.
func (r *Reactor) notifyConverter(ctx context.Context, gcsURI string) error {
	ctx, cancel := context.WithTimeout(ctx, r.config.ConvertTimeout)
	defer cancel()

	payload, err := json.Marshal(models.ConvertRequest{SourcePath: gcsURI})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %w", ErrConvertRequestFailed, err)
	}

	endpoint := strings.TrimSuffix(r.config.ConvertServiceBaseURL, "/") + "/convert"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConvertRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConvertRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s returned %d: %s", ErrConvertRequestFailed, endpoint, resp.StatusCode, body)
	}

	var job models.ConvertResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		slog.Warn("Conversion job enqueued but response could not be decoded", "error", err)
		return nil
	}
	slog.Info("Conversion job enqueued", "jobId", job.ID, "jobStatus", job.Status, "sourcePath", gcsURI)
	return nil
}

// HandleDeleted processes an object-deleted event by removing the converted
// sibling artifact, if any. Deletions of converted artifacts themselves are
// ignored so a cascade cannot loop. Document records are not touched here:
// record deletion is user-initiated and handled by the uploader.
func (r *Reactor) HandleDeleted(ctx context.Context, e StorageObjectEvent) error {
	if _, ok := models.ParseMaterialPath(e.Name); !ok {
		return nil
	}
	if strings.HasSuffix(e.Name, models.ConvertedExtension) {
		return nil
	}

	sibling, ok := models.ConvertedSiblingPath(e.Name)
	if !ok {
		return nil
	}

	logCtx := slog.With("objectPath", e.Name, "siblingPath", sibling)

	exists, err := r.blobs.Exists(ctx, sibling)
	if err != nil {
		logCtx.Error("Failed to check for converted artifact", "error", err)
		return nil
	}
	if !exists {
		logCtx.Info("No converted artifact to clean up")
		return nil
	}

	if err := r.blobs.Delete(ctx, sibling); err != nil && !errors.Is(err, ErrBlobNotFound) {
		logCtx.Error("Failed to delete converted artifact", "error", err)
		return nil
	}
	logCtx.Info("Deleted converted artifact")
	return nil
}
