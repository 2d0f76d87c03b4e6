package services

import (
	"context"
	"errors"
	"io"

	"github.com/lumilearn/documentflow/internal/models"
)

// Errors surfaced by the lifecycle services. Validation errors are returned
// to callers verbatim; the rest are wrapped with context via %w.
var (
	ErrInvalidFileType   = errors.New("invalid file type: allowed types are pdf, ppt, pptx, doc, docx, md, txt")
	ErrFileTooLarge      = errors.New("file size exceeds the 10 MiB limit")
	ErrRecordNotFound    = errors.New("document record not found")
	ErrIllegalTransition = errors.New("illegal document status transition")
	ErrBlobNotFound      = errors.New("storage object not found")

	// ErrUploadFailed marks a blob write failure after the document record
	// was already created; the record is compensated away before this is
	// returned.
	ErrUploadFailed = errors.New("upload failed")

	// ErrConvertRequestFailed marks a failed notification to the conversion
	// service. It is logged, never propagated out of the trigger handlers.
	ErrConvertRequestFailed = errors.New("conversion request failed")
)

// RecordStore is the persistence port for document records and their owning
// courses. The Firestore adapter lives in internal/gcp; an in-memory
// implementation backs tests and local runs.
type RecordStore interface {
	// EnsureCourse creates the course if it does not exist yet. An existing
	// course is left untouched.
	EnsureCourse(ctx context.Context, course *models.Course) error

	// CreateDocument persists a new record and returns its assigned id.
	CreateDocument(ctx context.Context, doc *models.Document) (string, error)

	// GetDocument returns ErrRecordNotFound when id does not resolve.
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// GetDocumentByPath returns nil (and no error) when no record exists for
	// the given course and storage path.
	GetDocumentByPath(ctx context.Context, courseID, storagePath string) (*models.Document, error)

	// UpdateDocumentStatus writes the status and, when non-empty, the storage
	// path and error details. Returns ErrRecordNotFound for a missing id.
	UpdateDocumentStatus(ctx context.Context, id string, status models.Status, storagePath, errorDetails string) error

	// UpdateDocumentFields replaces the mutable fields of a record. Returns
	// ErrRecordNotFound for a missing id.
	UpdateDocumentFields(ctx context.Context, id string, doc *models.Document) error

	// DeleteDocument is idempotent: deleting a missing id is not an error.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocumentsByCourse returns the course's records in stable order.
	ListDocumentsByCourse(ctx context.Context, courseID string) ([]*models.Document, error)
}

// BlobStore is the binary content port backed by Cloud Storage.
type BlobStore interface {
	Write(ctx context.Context, objectPath, contentType string, content io.Reader) error

	// Delete returns ErrBlobNotFound when the object does not exist.
	Delete(ctx context.Context, objectPath string) error

	Exists(ctx context.Context, objectPath string) (bool, error)
}
