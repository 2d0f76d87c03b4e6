package services

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/lumilearn/documentflow/internal/models"
)

// MaxFileSizeBytes is the upload size limit. The declared size is advisory:
// it is validated here but not verified against the actual blob.
const MaxFileSizeBytes = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".ppt":  true,
	".pptx": true,
	".doc":  true,
	".docx": true,
	".md":   true,
	".txt":  true,
}

// RecordManagerConfig holds the record manager's settings.
type RecordManagerConfig struct {
	// StrictTransitions rejects status writes that are not legal successors
	// of the record's current status. The default is permissive: the
	// conversion service is trusted to only write legal values.
	StrictTransitions bool
}

// RecordManager is the sole authority for document record identity and for
// the status pipeline. All writers (the upload path, the storage triggers
// and the conversion service's callbacks) go through it.
type RecordManager struct {
	store  RecordStore
	config RecordManagerConfig
}

// NewRecordManager creates a RecordManager over the given store.
func NewRecordManager(store RecordStore, config RecordManagerConfig) *RecordManager {
	return &RecordManager{store: store, config: config}
}

// CreateDocumentParams carries the inputs for a new document record. The
// course title and description are only used when the course does not exist
// yet.
type CreateDocumentParams struct {
	CourseID          string
	CourseTitle       string
	CourseDescription string
	FileName          string
	MimeType          string
	SizeBytes         int64
	StoragePath       string
}

// Create validates the file's type and size, makes sure the owning course
// exists, and persists a new record with status UPLOADING.
func (m *RecordManager) Create(ctx context.Context, p CreateDocumentParams) (*models.Document, error) {
	ext := strings.ToLower(path.Ext(p.FileName))
	if !allowedExtensions[ext] {
		return nil, ErrInvalidFileType
	}
	if p.SizeBytes > MaxFileSizeBytes {
		return nil, ErrFileTooLarge
	}

	course := &models.Course{
		ID:          p.CourseID,
		Title:       p.CourseTitle,
		Description: p.CourseDescription,
	}
	if err := m.store.EnsureCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to ensure course %s exists: %w", p.CourseID, err)
	}

	doc := &models.Document{
		CourseID:    p.CourseID,
		FileName:    p.FileName,
		MimeType:    p.MimeType,
		SizeBytes:   p.SizeBytes,
		StoragePath: p.StoragePath,
		Status:      models.StatusUploading,
	}
	id, err := m.store.CreateDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}
	doc.ID = id

	slog.Info("Created document record", "documentId", id, "courseId", p.CourseID, "fileName", p.FileName)
	return doc, nil
}

// UpdateStatus advances a record's status. storagePath and errorDetails are
// only written when non-empty. In strict mode the transition must be legal
// per models.Status.CanTransitionTo.
func (m *RecordManager) UpdateStatus(ctx context.Context, id string, status models.Status, storagePath, errorDetails string) error {
	if !status.Valid() {
		return fmt.Errorf("unknown document status %q", status)
	}

	if m.config.StrictTransitions {
		current, err := m.store.GetDocument(ctx, id)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current.Status, status)
		}
	}

	if err := m.store.UpdateDocumentStatus(ctx, id, status, storagePath, errorDetails); err != nil {
		return err
	}
	slog.Info("Updated document status", "documentId", id, "status", status)
	return nil
}

// UpdateFields replaces all mutable fields of a record in one write.
func (m *RecordManager) UpdateFields(ctx context.Context, id string, doc *models.Document) error {
	if !doc.Status.Valid() {
		return fmt.Errorf("unknown document status %q", doc.Status)
	}
	return m.store.UpdateDocumentFields(ctx, id, doc)
}

// Get resolves a record by id.
func (m *RecordManager) Get(ctx context.Context, id string) (*models.Document, error) {
	return m.store.GetDocument(ctx, id)
}

// GetByPath resolves a record by its course and storage path. A missing
// record is reported as nil, not as an error.
func (m *RecordManager) GetByPath(ctx context.Context, courseID, storagePath string) (*models.Document, error) {
	return m.store.GetDocumentByPath(ctx, courseID, storagePath)
}

// Delete removes a record. Deleting an id that no longer resolves is a
// no-op, which lets cleanup call sites race without failing.
func (m *RecordManager) Delete(ctx context.Context, id string) error {
	return m.store.DeleteDocument(ctx, id)
}

// ListByCourse returns all records owned by a course.
func (m *RecordManager) ListByCourse(ctx context.Context, courseID string) ([]*models.Document, error) {
	return m.store.ListDocumentsByCourse(ctx, courseID)
}
