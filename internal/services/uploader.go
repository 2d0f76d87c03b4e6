package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lumilearn/documentflow/internal/models"
	"golang.org/x/sync/errgroup"
)

// Uploader drives the two-phase creation of a document: record first, blob
// second, with a compensating record delete when the blob write fails. There
// is no transactional boundary between Firestore and Cloud Storage, so every
// partial-failure path here is an explicit compensating action.
type Uploader struct {
	records *RecordManager
	blobs   BlobStore
}

// NewUploader creates an Uploader over the given record manager and blob
// store.
func NewUploader(records *RecordManager, blobs BlobStore) *Uploader {
	return &Uploader{records: records, blobs: blobs}
}

// UploadParams carries the inputs for one upload attempt.
type UploadParams struct {
	CourseID          string
	CourseTitle       string
	CourseDescription string
	FileName          string
	MimeType          string
	SizeBytes         int64
}

// UploadResult is the outcome of a successful upload. Overwrote reports that
// a prior material at the same path was replaced.
type UploadResult struct {
	Document  *models.Document
	Overwrote bool
}

// Upload runs the upload protocol for a single file:
//
//  1. The storage path is derived from course and file name, so a re-upload
//     of the same name targets the same object.
//  2. An existing record at that path is removed together with its blob
//     before anything is created (overwrite, never update in place).
//  3. The record is created with status UPLOADING; validation failures abort
//     before any blob write.
//  4. The blob is written. On failure the record is deleted again and
//     ErrUploadFailed is returned with the cause.
//
// The status stays UPLOADING on success: only the storage trigger, which
// observes the finalized object, advances it to UPLOADED.
func (u *Uploader) Upload(ctx context.Context, p UploadParams, content io.Reader) (*UploadResult, error) {
	objectPath := models.MaterialObjectPath(p.CourseID, p.FileName)

	overwrote, err := u.removeExisting(ctx, p.CourseID, objectPath)
	if err != nil {
		return nil, err
	}

	doc, err := u.records.Create(ctx, CreateDocumentParams{
		CourseID:          p.CourseID,
		CourseTitle:       p.CourseTitle,
		CourseDescription: p.CourseDescription,
		FileName:          p.FileName,
		MimeType:          p.MimeType,
		SizeBytes:         p.SizeBytes,
		StoragePath:       objectPath,
	})
	if err != nil {
		return nil, err
	}

	if err := u.blobs.Write(ctx, objectPath, p.MimeType, content); err != nil {
		u.compensate(ctx, doc.ID, objectPath)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	return &UploadResult{Document: doc, Overwrote: overwrote}, nil
}

// removeExisting clears a prior material at objectPath so the new upload can
// take its place. Blob and record are independent systems; their deletes
// don't order against each other and run concurrently.
func (u *Uploader) removeExisting(ctx context.Context, courseID, objectPath string) (bool, error) {
	existing, err := u.records.GetByPath(ctx, courseID, objectPath)
	if err != nil {
		return false, fmt.Errorf("failed to look up existing document at %s: %w", objectPath, err)
	}
	if existing == nil {
		return false, nil
	}

	slog.Info("Overwriting existing material", "documentId", existing.ID, "storagePath", objectPath)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := u.blobs.Delete(gctx, objectPath); err != nil && !errors.Is(err, ErrBlobNotFound) {
			return fmt.Errorf("failed to delete existing blob %s: %w", objectPath, err)
		}
		return nil
	})
	eg.Go(func() error {
		if err := u.records.Delete(gctx, existing.ID); err != nil {
			return fmt.Errorf("failed to delete existing document %s: %w", existing.ID, err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return false, err
	}
	return true, nil
}

// compensate removes the record created for a blob write that failed, so no
// UPLOADING record without backing content is left behind. If the compensating
// delete itself fails the orphan is logged for out-of-band cleanup; there is
// no reconciliation sweep.
func (u *Uploader) compensate(ctx context.Context, documentID, objectPath string) {
	if err := u.records.Delete(ctx, documentID); err != nil {
		slog.Error("Orphaned document record: blob write and compensating delete both failed",
			"documentId", documentID, "storagePath", objectPath, "error", err)
		return
	}
	slog.Warn("Rolled back document record after failed blob write",
		"documentId", documentID, "storagePath", objectPath)
}

// Delete runs the user-initiated deletion protocol: blob first, record
// second. A missing blob is fine (already gone); any other blob failure is
// logged and deletion continues, because a dangling record shows up broken
// in listings while a dangling blob is invisible.
func (u *Uploader) Delete(ctx context.Context, documentID string) error {
	doc, err := u.records.Get(ctx, documentID)
	if errors.Is(err, ErrRecordNotFound) {
		slog.Info("Document already deleted", "documentId", documentID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve document %s: %w", documentID, err)
	}

	if doc.StoragePath != "" {
		switch err := u.blobs.Delete(ctx, doc.StoragePath); {
		case err == nil:
		case errors.Is(err, ErrBlobNotFound):
			slog.Info("Blob already removed", "documentId", documentID, "storagePath", doc.StoragePath)
		default:
			slog.Warn("Failed to delete blob, continuing with record delete",
				"documentId", documentID, "storagePath", doc.StoragePath, "error", err)
		}
	}

	if err := u.records.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}
	slog.Info("Deleted material", "documentId", documentID, "storagePath", doc.StoragePath)
	return nil
}
