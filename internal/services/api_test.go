package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumilearn/documentflow/internal/models"
)

func newTestAPI(t *testing.T) (*API, *MemoryBlobs) {
	t.Helper()
	records := NewRecordManager(NewMemoryRecords(), RecordManagerConfig{})
	blobs := NewMemoryBlobs()
	return NewAPI(records, NewUploader(records, blobs)), blobs
}

func multipartUpload(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)

	require.NoError(t, writer.WriteField("courseTitle", "Intro to Systems"))
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func doUpload(t *testing.T, api *API, fileName, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, fileName, content)
	req := httptest.NewRequest(http.MethodPost, "/courses/courseA/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Upload(t *testing.T) {
	api, blobs := newTestAPI(t)

	rec := doUpload(t, api, "notes.pdf", "content")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "notes.pdf", resp.Document.FileName)
	assert.Equal(t, models.StatusUploading, resp.Document.Status)
	assert.Equal(t, "PDF", resp.Type)
	assert.False(t, resp.Overwrote)

	data, ok := blobs.Get("courseA/materials/notes.pdf")
	require.True(t, ok)
	assert.Equal(t, "content", string(data))
}

func TestAPI_UploadOverwrite(t *testing.T) {
	api, _ := newTestAPI(t)

	require.Equal(t, http.StatusCreated, doUpload(t, api, "notes.pdf", "v1").Code)
	rec := doUpload(t, api, "notes.pdf", "v2")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Overwrote)
}

func TestAPI_UploadRejectsBadType(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doUpload(t, api, "notes.exe", "x")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid file type")
}

func TestAPI_ListDocuments(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/courseA/documents", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"documents":[]}`, rec.Body.String())

	require.Equal(t, http.StatusCreated, doUpload(t, api, "notes.pdf", "x").Code)

	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/courseA/documents", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ListDocumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "notes.pdf", resp.Documents[0].FileName)
}

func TestAPI_DeleteDocument(t *testing.T) {
	api, blobs := newTestAPI(t)

	rec := doUpload(t, api, "notes.pdf", "x")
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/documents/"+resp.Document.ID, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, ok := blobs.Get("courseA/materials/notes.pdf")
	assert.False(t, ok)
}

func TestAPI_UpdateStatusCallback(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doUpload(t, api, "notes.pdf", "x")
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	body := strings.NewReader(`{"status":"CONVERTING"}`)
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/documents/"+resp.Document.ID, body))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/courseA/documents", nil))
	var listing models.ListDocumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Documents, 1)
	assert.Equal(t, models.StatusConverting, listing.Documents[0].Status)
}

func TestAPI_UpdateStatusValidation(t *testing.T) {
	api, _ := newTestAPI(t)

	// Unknown status value.
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/documents/some-id",
		strings.NewReader(`{"status":"DONE"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Direct update against a missing record is a hard failure.
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/documents/missing",
		strings.NewReader(`{"status":"CONVERTING"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ReplaceDocument(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doUpload(t, api, "notes.pdf", "x")
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	update := `{"fileName":"renamed.pdf","mimeType":"application/pdf","sizeBytes":99,` +
		`"storagePath":"courseA/materials/renamed.pdf","status":"CONVERTED"}`
	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/documents/"+resp.Document.ID,
		strings.NewReader(update)))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/courseA/documents", nil))
	var listing models.ListDocumentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Documents, 1)
	assert.Equal(t, "renamed.pdf", listing.Documents[0].FileName)
	assert.Equal(t, models.StatusConverted, listing.Documents[0].Status)
}
