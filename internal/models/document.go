package models

import (
	"path"
	"strings"
	"time"
)

// Document is the Firestore record for one uploaded course material. It
// tracks the file's metadata, its storage location and its processing status.
type Document struct {
	ID           string    `firestore:"-" json:"id"`
	CourseID     string    `firestore:"courseId" json:"courseId"`
	FileName     string    `firestore:"fileName" json:"fileName"`
	MimeType     string    `firestore:"mimeType,omitempty" json:"mimeType,omitempty"`
	SizeBytes    int64     `firestore:"sizeBytes" json:"sizeBytes"`
	StoragePath  string    `firestore:"storagePath" json:"storagePath"`
	Status       Status    `firestore:"status" json:"status"`
	ErrorDetails string    `firestore:"errorDetails,omitempty" json:"errorDetails,omitempty"`
	UpdatedAt    time.Time `firestore:"updatedAt,serverTimestamp" json:"updatedAt"`
}

// Course is the owning collection for a set of materials. Courses are created
// lazily the first time a material is uploaded into them.
type Course struct {
	ID          string    `firestore:"-" json:"id"`
	Title       string    `firestore:"title,omitempty" json:"title,omitempty"`
	Description string    `firestore:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
}

var materialTypes = map[string]string{
	".pdf":  "PDF",
	".ppt":  "PPT",
	".pptx": "PPT",
	".doc":  "DOC",
	".docx": "DOC",
	".md":   "MD",
	".txt":  "MD",
}

// MaterialType maps the document's file extension to the coarse type shown
// in course listings. Unknown extensions fall back to PDF.
func (d *Document) MaterialType() string {
	if t, ok := materialTypes[strings.ToLower(path.Ext(d.FileName))]; ok {
		return t
	}
	return "PDF"
}

// Title is the file name with its extension stripped.
func (d *Document) Title() string {
	return strings.TrimSuffix(d.FileName, path.Ext(d.FileName))
}
