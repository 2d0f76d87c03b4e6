package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lumilearn/documentflow/internal/models"
)

// MemoryRecords is an in-memory RecordStore. It backs the materials API in
// local mode and the service tests; semantics mirror the Firestore adapter,
// including idempotent deletes and insertion-ordered listings.
type MemoryRecords struct {
	mu      sync.Mutex
	docs    map[string]*models.Document
	courses map[string]*models.Course
	order   []string
}

// NewMemoryRecords creates an empty in-memory record store.
func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{
		docs:    make(map[string]*models.Document),
		courses: make(map[string]*models.Course),
	}
}

func (s *MemoryRecords) EnsureCourse(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[course.ID]; ok {
		return nil
	}
	c := *course
	c.CreatedAt = time.Now()
	s.courses[course.ID] = &c
	return nil
}

func (s *MemoryRecords) CreateDocument(_ context.Context, doc *models.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	d := *doc
	d.ID = id
	d.UpdatedAt = time.Now()
	s.docs[id] = &d
	s.order = append(s.order, id)
	return id, nil
}

func (s *MemoryRecords) GetDocument(_ context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	d := *doc
	return &d, nil
}

func (s *MemoryRecords) GetDocumentByPath(_ context.Context, courseID, storagePath string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		doc := s.docs[id]
		if doc.CourseID == courseID && doc.StoragePath == storagePath {
			d := *doc
			return &d, nil
		}
	}
	return nil, nil
}

func (s *MemoryRecords) UpdateDocumentStatus(_ context.Context, id string, status models.Status, storagePath, errorDetails string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return ErrRecordNotFound
	}
	doc.Status = status
	if storagePath != "" {
		doc.StoragePath = storagePath
	}
	if errorDetails != "" {
		doc.ErrorDetails = errorDetails
	}
	doc.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryRecords) UpdateDocumentFields(_ context.Context, id string, fields *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return ErrRecordNotFound
	}
	doc.FileName = fields.FileName
	doc.MimeType = fields.MimeType
	doc.SizeBytes = fields.SizeBytes
	doc.StoragePath = fields.StoragePath
	doc.Status = fields.Status
	doc.ErrorDetails = fields.ErrorDetails
	doc.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryRecords) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return nil
	}
	delete(s.docs, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryRecords) ListDocumentsByCourse(_ context.Context, courseID string) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Document
	for _, id := range s.order {
		if doc := s.docs[id]; doc.CourseID == courseID {
			d := *doc
			out = append(out, &d)
		}
	}
	return out, nil
}

// Course returns a stored course, mainly for tests and local inspection.
func (s *MemoryRecords) Course(id string) (*models.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, false
	}
	c := *course
	return &c, true
}

// MemoryBlobs is an in-memory BlobStore with the same not-found semantics as
// the Cloud Storage adapter.
type MemoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryBlobs creates an empty in-memory blob store.
func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{objects: make(map[string][]byte)}
}

func (s *MemoryBlobs) Write(_ context.Context, objectPath, _ string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("failed to read content for %s: %w", objectPath, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectPath] = bytes.Clone(data)
	return nil
}

func (s *MemoryBlobs) Delete(_ context.Context, objectPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[objectPath]; !ok {
		return ErrBlobNotFound
	}
	delete(s.objects, objectPath)
	return nil
}

func (s *MemoryBlobs) Exists(_ context.Context, objectPath string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectPath]
	return ok, nil
}

// Get returns an object's content, mainly for tests and local inspection.
func (s *MemoryBlobs) Get(objectPath string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objectPath]
	if !ok {
		return nil, false
	}
	return bytes.Clone(data), true
}
