package filestore

import (
	"io"
	"time"
)

// ObjectInfo describes a single stored object. It is also the JSON shape
// snapshot listings are served in.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"` // -1 if unknown
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`

	// IsDir marks a common prefix rather than a stored object.
	IsDir bool `json:"is_dir,omitempty"`
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser
	Info() *ObjectInfo
}

// ListOptions controls how ListObjects filters and paginates results.
type ListOptions struct {
	// Prefix restricts results to keys starting with it; "" lists everything.
	Prefix string

	// Recursive lists every key under Prefix instead of grouping by "/".
	Recursive bool

	// Limit caps the number of results. 0 means no cap.
	Limit int

	// StartAfter resumes listing after this key.
	StartAfter string
}
