package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumilearn/documentflow/internal/models"
)

func newTestRecordManager(t *testing.T, strict bool) (*RecordManager, *MemoryRecords) {
	t.Helper()
	store := NewMemoryRecords()
	return NewRecordManager(store, RecordManagerConfig{StrictTransitions: strict}), store
}

func validCreateParams() CreateDocumentParams {
	return CreateDocumentParams{
		CourseID:    "courseA",
		CourseTitle: "Intro to Systems",
		FileName:    "notes.pdf",
		MimeType:    "application/pdf",
		SizeBytes:   1024,
		StoragePath: models.MaterialObjectPath("courseA", "notes.pdf"),
	}
}

func TestCreate_RejectsDisallowedExtension(t *testing.T) {
	m, _ := newTestRecordManager(t, false)

	for _, name := range []string{"malware.exe", "archive.zip", "noextension", "image.png"} {
		p := validCreateParams()
		p.FileName = name
		_, err := m.Create(context.Background(), p)
		assert.ErrorIs(t, err, ErrInvalidFileType, name)
	}
}

func TestCreate_AllowsAllListedExtensions(t *testing.T) {
	m, _ := newTestRecordManager(t, false)

	for _, name := range []string{"a.pdf", "b.ppt", "c.pptx", "d.doc", "e.docx", "f.md", "g.txt", "h.PDF"} {
		p := validCreateParams()
		p.FileName = name
		_, err := m.Create(context.Background(), p)
		assert.NoError(t, err, name)
	}
}

func TestCreate_SizeLimit(t *testing.T) {
	m, _ := newTestRecordManager(t, false)

	p := validCreateParams()
	p.SizeBytes = 10*1024*1024 + 1
	_, err := m.Create(context.Background(), p)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	p.SizeBytes = 10 * 1024 * 1024
	doc, err := m.Create(context.Background(), p)
	require.NoError(t, err, "limit is inclusive")
	assert.Equal(t, int64(10*1024*1024), doc.SizeBytes)
}

func TestCreate_StartsUploadingWithID(t *testing.T) {
	m, _ := newTestRecordManager(t, false)

	doc, err := m.Create(context.Background(), validCreateParams())
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, models.StatusUploading, doc.Status)
	assert.Equal(t, "courseA/materials/notes.pdf", doc.StoragePath)
}

func TestCreate_EnsuresCourse(t *testing.T) {
	m, store := newTestRecordManager(t, false)

	_, err := m.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	course, ok := store.Course("courseA")
	require.True(t, ok, "course must exist before its first document")
	assert.Equal(t, "Intro to Systems", course.Title)

	// A second upload must not clobber the existing course.
	p := validCreateParams()
	p.CourseTitle = "Renamed"
	p.FileName = "more.pdf"
	p.StoragePath = models.MaterialObjectPath("courseA", "more.pdf")
	_, err = m.Create(context.Background(), p)
	require.NoError(t, err)

	course, _ = store.Course("courseA")
	assert.Equal(t, "Intro to Systems", course.Title)
}

func TestUpdateStatus_Permissive(t *testing.T) {
	m, _ := newTestRecordManager(t, false)
	doc, err := m.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	// The conversion service is trusted: skipping ahead is allowed by
	// default.
	err = m.UpdateStatus(context.Background(), doc.ID, models.StatusAnalyzed, "", "")
	require.NoError(t, err)

	got, err := m.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAnalyzed, got.Status)
}

func TestUpdateStatus_Strict(t *testing.T) {
	m, _ := newTestRecordManager(t, true)
	doc, err := m.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	err = m.UpdateStatus(context.Background(), doc.ID, models.StatusAnalyzed, "", "")
	assert.ErrorIs(t, err, ErrIllegalTransition)

	err = m.UpdateStatus(context.Background(), doc.ID, models.StatusUploaded, "", "")
	require.NoError(t, err)

	err = m.UpdateStatus(context.Background(), doc.ID, models.StatusError, "", "conversion blew up")
	require.NoError(t, err, "ERROR is reachable from any non-terminal state")

	got, err := m.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "conversion blew up", got.ErrorDetails)
}

func TestUpdateStatus_RejectsUnknownValue(t *testing.T) {
	m, _ := newTestRecordManager(t, false)
	doc, err := m.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	err = m.UpdateStatus(context.Background(), doc.ID, models.Status("FINISHED"), "", "")
	assert.Error(t, err)
}

func TestUpdateStatus_MissingRecord(t *testing.T) {
	m, _ := newTestRecordManager(t, false)
	err := m.UpdateStatus(context.Background(), "nope", models.StatusUploaded, "", "")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUpdateFields(t *testing.T) {
	m, _ := newTestRecordManager(t, false)
	doc, err := m.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	err = m.UpdateFields(context.Background(), doc.ID, &models.Document{
		FileName:    "renamed.pdf",
		MimeType:    "application/pdf",
		SizeBytes:   2048,
		StoragePath: "courseA/materials/renamed.pdf",
		Status:      models.StatusConverted,
	})
	require.NoError(t, err)

	got, err := m.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", got.FileName)
	assert.Equal(t, models.StatusConverted, got.Status)

	err = m.UpdateFields(context.Background(), "nope", &models.Document{Status: models.StatusConverted})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	m, _ := newTestRecordManager(t, false)
	doc, err := m.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	require.NoError(t, m.Delete(context.Background(), doc.ID))
	require.NoError(t, m.Delete(context.Background(), doc.ID), "second delete is a no-op")
	require.NoError(t, m.Delete(context.Background(), "never-existed"))
}

func TestGetByPathAndList(t *testing.T) {
	m, _ := newTestRecordManager(t, false)

	first, err := m.Create(context.Background(), validCreateParams())
	require.NoError(t, err)

	p := validCreateParams()
	p.FileName = "slides.pptx"
	p.StoragePath = models.MaterialObjectPath("courseA", "slides.pptx")
	second, err := m.Create(context.Background(), p)
	require.NoError(t, err)

	got, err := m.GetByPath(context.Background(), "courseA", first.StoragePath)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)

	missing, err := m.GetByPath(context.Background(), "courseA", "courseA/materials/absent.pdf")
	require.NoError(t, err)
	assert.Nil(t, missing)

	docs, err := m.ListByCourse(context.Background(), "courseA")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.ID, docs[0].ID, "insertion order")
	assert.Equal(t, second.ID, docs[1].ID)

	other, err := m.ListByCourse(context.Background(), "courseB")
	require.NoError(t, err)
	assert.Empty(t, other)
}
