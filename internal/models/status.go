package models

import "fmt"

// Status is the processing stage of an uploaded course material. Values are
// stored and transmitted verbatim; the conversion service writes the same
// literals back through the records API.
type Status string

const (
	StatusUploading  Status = "UPLOADING"
	StatusUploaded   Status = "UPLOADED"
	StatusConverting Status = "CONVERTING"
	StatusConverted  Status = "CONVERTED"
	StatusChunking   Status = "CHUNKING"
	StatusChunked    Status = "CHUNKED"
	StatusAnalyzing  Status = "ANALYZING"
	StatusAnalyzed   Status = "ANALYZED"
	StatusError      Status = "ERROR"
)

// pipeline is the forward progression of a document through processing.
var pipeline = []Status{
	StatusUploading,
	StatusUploaded,
	StatusConverting,
	StatusConverted,
	StatusChunking,
	StatusChunked,
	StatusAnalyzing,
	StatusAnalyzed,
}

var pipelineIndex = func() map[Status]int {
	m := make(map[Status]int, len(pipeline))
	for i, s := range pipeline {
		m[s] = i
	}
	return m
}()

// ParseStatus validates a raw status string coming in over the wire.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown document status %q", raw)
	}
	return s, nil
}

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	if s == StatusError {
		return true
	}
	_, ok := pipelineIndex[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusAnalyzed || s == StatusError
}

// CanTransitionTo reports whether moving from s to next is legal: one step
// forward along the pipeline, or to ERROR from any non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusError {
		return true
	}
	from, ok := pipelineIndex[s]
	if !ok {
		return false
	}
	to, ok := pipelineIndex[next]
	if !ok {
		return false
	}
	return to == from+1
}

func (s Status) String() string {
	return string(s)
}
