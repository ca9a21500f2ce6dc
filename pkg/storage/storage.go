package storage

// Package storage defines the object store gateway used by the lifecycle
// service. It provides a unified interface over S3-compatible object storage
// (AWS S3, Cloudflare R2, MinIO) plus a local filesystem backend for tests
// and development.

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Stat, Copy and Get when the addressed
// object does not exist. Backends translate their SDK-specific not-found
// shapes into this sentinel so callers never match on SDK error types.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string
	Metadata     map[string]string
}

// ListPage is one page of a prefix listing. NextToken is empty on the
// final page.
type ListPage struct {
	Objects   []ObjectInfo
	NextToken string
}

// IngestResult reports a completed streaming ingest. Size is the byte count
// actually streamed, not the source's declared Content-Length: the two match
// for a well-behaved source, and the streamed count stays correct when the
// source declares no length at all.
type IngestResult struct {
	Key  string
	Size int64
	ETag string
}

// ProgressFunc observes ingest progress as (bytes transferred, total).
// total is 0 when the source does not declare a length. Observability
// only; implementations must not fail an upload because of it.
type ProgressFunc func(transferred, total int64)

// PresignedUpload authorizes a single direct PUT to Key.
type PresignedUpload struct {
	URL string
	Key string
}

// Storage is the gateway to one bucket of an object store. Implementations
// are safe for concurrent use across keys; concurrent mutations of the same
// key are not coordinated here.
type Storage interface {
	// IngestFromURL streams the body of sourceURL into key using a
	// multipart upload with bounded part size and concurrency, so peak
	// memory stays O(part size x concurrency) regardless of payload size.
	// On any fetch or upload error nothing remains readable at key.
	// progress may be nil.
	IngestFromURL(ctx context.Context, sourceURL, key, contentType string, metadata map[string]string, progress ProgressFunc) (*IngestResult, error)

	// PutObject uploads from an in-process reader. size may be -1 when
	// unknown. Used by tests and small direct writes; large external
	// payloads go through IngestFromURL.
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64, metadata map[string]string) error

	// GetObject returns the object body. The caller must close it.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// StatObject returns object metadata, or ErrObjectNotFound.
	StatObject(ctx context.Context, key string) (*ObjectInfo, error)

	// CopyObject copies srcKey to dstKey inside the bucket, preserving
	// content type and metadata. Returns ErrObjectNotFound when srcKey
	// does not exist.
	CopyObject(ctx context.Context, srcKey, dstKey string) error

	// DeleteObject removes key. Deleting an absent key is not an error.
	DeleteObject(ctx context.Context, key string) error

	// DeleteObjects removes up to one listing page of keys in a single
	// batch call. Absent keys are ignored.
	DeleteObjects(ctx context.Context, objKeys []string) error

	// ListObjects returns one page of keys under prefix. maxKeys bounds
	// the page size; token continues a previous page.
	ListObjects(ctx context.Context, prefix string, maxKeys int32, token string) (*ListPage, error)

	// PresignUpload authorizes a single PUT of contentType to key for the
	// given duration. No existence check: the PUT may create or overwrite.
	PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (*PresignedUpload, error)

	// PresignView authorizes a single GET of key for the given duration.
	// The object is not checked for existence; a signed URL for a missing
	// object fails when dereferenced.
	PresignView(ctx context.Context, key string, expires time.Duration) (string, error)

	// PublicURL computes the browser URL for a public-prefixed key. Pure
	// string computation, no I/O, cannot fail.
	PublicURL(key string) string

	// Type returns the backend identifier ("local" or "s3").
	Type() string
}

// Default tuning shared by backends and callers.
const (
	// DefaultPresignUploadExpiry reflects immediate client use of upload
	// URLs.
	DefaultPresignUploadExpiry = 60 * time.Second

	// DefaultPresignViewExpiry for view URLs handed to browsers.
	DefaultPresignViewExpiry = time.Hour

	// MaxListPageSize is the largest page an S3-compatible listing
	// returns, and the batch-delete ceiling.
	MaxListPageSize = 1000
)
