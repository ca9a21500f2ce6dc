// Package api holds the JSON request and response bodies of the HTTP
// surface.
package api

import "time"

// IngestRequest asks the service to pull an externally rendered asset into
// the store.
type IngestRequest struct {
	SourceURL   string            `json:"source_url"`
	Key         string            `json:"key"`
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (r *IngestRequest) GetSourceURL() string {
	if r == nil {
		return ""
	}
	return r.SourceURL
}

func (r *IngestRequest) GetKey() string {
	if r == nil {
		return ""
	}
	return r.Key
}

func (r *IngestRequest) GetContentType() string {
	if r == nil {
		return ""
	}
	return r.ContentType
}

func (r *IngestRequest) GetMetadata() map[string]string {
	if r == nil {
		return nil
	}
	return r.Metadata
}

// IngestResponse reports a completed ingest.
type IngestResponse struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	ETag string `json:"etag,omitempty"`
}

// PresignUploadRequest asks for a direct-PUT authorization.
type PresignUploadRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	// ExpiresSeconds of 0 selects the default short window.
	ExpiresSeconds int `json:"expires_seconds,omitempty"`
}

func (r *PresignUploadRequest) GetKey() string {
	if r == nil {
		return ""
	}
	return r.Key
}

func (r *PresignUploadRequest) GetContentType() string {
	if r == nil {
		return ""
	}
	return r.ContentType
}

func (r *PresignUploadRequest) GetExpiresSeconds() int {
	if r == nil {
		return 0
	}
	return r.ExpiresSeconds
}

// PresignUploadResponse carries the signed PUT URL.
type PresignUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignViewRequest asks for a direct-GET authorization.
type PresignViewRequest struct {
	Key            string `json:"key"`
	ExpiresSeconds int    `json:"expires_seconds,omitempty"`
}

func (r *PresignViewRequest) GetKey() string {
	if r == nil {
		return ""
	}
	return r.Key
}

func (r *PresignViewRequest) GetExpiresSeconds() int {
	if r == nil {
		return 0
	}
	return r.ExpiresSeconds
}

// PresignViewResponse carries the signed GET URL.
type PresignViewResponse struct {
	URL string `json:"url"`
}

// KeyRequest addresses one object by key. Lifecycle operations always take
// the original key, never the trash-side key.
type KeyRequest struct {
	Key string `json:"key"`
}

func (r *KeyRequest) GetKey() string {
	if r == nil {
		return ""
	}
	return r.Key
}

// SoftDeleteResponse reports where the object was parked and when.
type SoftDeleteResponse struct {
	TrashKey  string    `json:"trash_key"`
	DeletedAt time.Time `json:"deleted_at"`
}

// RestoreResponse reports the key a restore brought back and when.
type RestoreResponse struct {
	RestoredKey string    `json:"restored_key"`
	RestoredAt  time.Time `json:"restored_at"`
}

// EmptyTrashResponse reports how many objects a purge removed.
type EmptyTrashResponse struct {
	Deleted int `json:"deleted"`
}
