package models

// These structs define the JSON payloads exchanged with the conversion
// service and with callers of the materials API.

// ConvertRequest is the body POSTed to the conversion service when a new
// material object is finalized in storage.
type ConvertRequest struct {
	SourcePath string `json:"source_path"`
}

// ConvertResponse is the conversion service's acknowledgement of an enqueued
// job.
type ConvertResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// UploadResponse is returned by the materials API after a successful upload.
// Overwrote is set when a prior material at the same path was replaced.
type UploadResponse struct {
	Document  *Document `json:"document"`
	Type      string    `json:"type"`
	Overwrote bool      `json:"overwrote"`
}

// ListDocumentsResponse wraps a course's material listing for the polling UI.
type ListDocumentsResponse struct {
	Documents []*Document `json:"documents"`
}

// UpdateStatusRequest is the callback payload the conversion service sends to
// advance a document's status. StoragePath and ErrorDetails are optional.
type UpdateStatusRequest struct {
	Status       string `json:"status"`
	StoragePath  string `json:"storagePath,omitempty"`
	ErrorDetails string `json:"errorDetails,omitempty"`
}

// ReplaceDocumentRequest is a full update of a document's mutable fields.
type ReplaceDocumentRequest struct {
	FileName    string `json:"fileName"`
	MimeType    string `json:"mimeType"`
	SizeBytes   int64  `json:"sizeBytes"`
	StoragePath string `json:"storagePath"`
	Status      string `json:"status"`
}
