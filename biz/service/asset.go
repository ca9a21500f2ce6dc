package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/lookloom/media_vault/pkg/keys"
	"github.com/lookloom/media_vault/pkg/storage"
)

// IngestInput describes one server-side pull of an externally rendered
// asset into the store.
type IngestInput struct {
	SourceURL   string
	Key         string
	ContentType string
	Metadata    map[string]string
}

// progressLogStep spaces out ingest progress log lines.
const progressLogStep = 50 * 1024 * 1024

// Ingest streams the body of input.SourceURL into input.Key. The transfer
// is multipart with bounded memory; on failure nothing remains at the key.
func (s *Service) Ingest(ctx context.Context, input *IngestInput) (*storage.IngestResult, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input required", ErrInvalidArgument)
	}
	if input.SourceURL == "" {
		return nil, fmt.Errorf("%w: source url is required", ErrInvalidArgument)
	}
	if err := keys.Validate(input.Key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if keys.IsTrashed(input.Key) {
		return nil, fmt.Errorf("%w: cannot ingest into the trash namespace: %s", ErrInvalidArgument, input.Key)
	}
	if err := s.uploadCfg.ValidateMimeType(input.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	var lastLogged int64
	progress := func(transferred, total int64) {
		if transferred-lastLogged < progressLogStep && transferred != total {
			return
		}
		lastLogged = transferred
		hlog.CtxInfof(ctx, "ingest %s: %d/%d bytes", input.Key, transferred, total)
	}

	result, err := s.store.IngestFromURL(ctx, input.SourceURL, input.Key, input.ContentType, input.Metadata, progress)
	if err != nil {
		return nil, fmt.Errorf("ingest from url: %w", err)
	}

	hlog.CtxInfof(ctx, "ingested %s (%d bytes)", result.Key, result.Size)
	return result, nil
}

// PresignUpload authorizes a direct client PUT of contentType to key.
// expires <= 0 picks the default short window.
func (s *Service) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (*storage.PresignedUpload, error) {
	if err := keys.Validate(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if keys.IsTrashed(key) {
		return nil, fmt.Errorf("%w: cannot upload into the trash namespace: %s", ErrInvalidArgument, key)
	}
	if err := s.uploadCfg.ValidateMimeType(contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return s.store.PresignUpload(ctx, key, contentType, expires)
}

// PresignView authorizes a direct client GET of key. expires <= 0 picks the
// default window.
func (s *Service) PresignView(ctx context.Context, key string, expires time.Duration) (string, error) {
	if err := keys.Validate(key); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return s.store.PresignView(ctx, key, expires)
}

// Delete removes key outright, bypassing the trash. Deleting an absent key
// succeeds.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := keys.Validate(key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := s.store.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// PublicURL computes the browser URL for a public asset. Only keys under
// the public prefix qualify; everything else is served via signed URLs.
func (s *Service) PublicURL(key string) (string, error) {
	if err := keys.Validate(key); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if !keys.IsPublic(key) {
		return "", fmt.Errorf("%w: key is not publicly readable: %s", ErrInvalidArgument, key)
	}
	return s.store.PublicURL(key), nil
}
