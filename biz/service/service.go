package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/lookloom/media_vault/pkg/lock"
	"github.com/lookloom/media_vault/pkg/storage"
	"github.com/lookloom/media_vault/pkg/validator"
)

var (
	// ErrInvalidArgument reports a request rejected before any store call:
	// a malformed key, a trash-side key where an original is expected, or a
	// content type outside the whitelist. Retrying without changing the
	// request cannot succeed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFileNotFound reports a soft-delete whose target does not exist.
	// The live copy is the precondition; nothing was moved.
	ErrFileNotFound = errors.New("file not found")

	// ErrRecoveryExpired reports a restore whose trash copy is gone or past
	// the retention window. The object is permanently unrecoverable.
	ErrRecoveryExpired = errors.New("recovery window expired")
)

// Config tunes the lifecycle service.
type Config struct {
	// Retention is how long a trashed object stays restorable.
	Retention time.Duration

	// ListLimit caps the single-page trash listing.
	ListLimit int

	// PurgePageSize bounds one list-and-delete round trip during a purge.
	PurgePageSize int
}

// Service runs the object lifecycle: ingest, presign, soft-delete, restore
// and purge. It keeps no state of its own; the store listing is the only
// source of truth for what is trashed.
type Service struct {
	store     storage.Storage
	locker    *lock.KeyLock
	uploadCfg *validator.UploadConfig

	retention     time.Duration
	listLimit     int
	purgePageSize int

	now func() time.Time
}

// NewService wires the lifecycle service over a storage backend. locker may
// be nil, in which case concurrent mutations of the same key race and the
// last store-level check wins. uploadCfg may be nil for default constraints.
func NewService(store storage.Storage, locker *lock.KeyLock, uploadCfg *validator.UploadConfig, cfg Config) *Service {
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 100
	}
	if cfg.PurgePageSize <= 0 || cfg.PurgePageSize > storage.MaxListPageSize {
		cfg.PurgePageSize = storage.MaxListPageSize
	}
	if uploadCfg == nil {
		uploadCfg = validator.DefaultUploadConfig()
	}
	return &Service{
		store:         store,
		locker:        locker,
		uploadCfg:     uploadCfg,
		retention:     cfg.Retention,
		listLimit:     cfg.ListLimit,
		purgePageSize: cfg.PurgePageSize,
		now:           time.Now,
	}
}

// Store exposes the underlying gateway, mainly for bootstrap wiring.
func (s *Service) Store() storage.Storage {
	return s.store
}

// withLease runs fn while holding the per-key lease, when a locker is
// configured. The release error is deliberately dropped; the lease expires
// on its own TTL.
func (s *Service) withLease(ctx context.Context, objKey string, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	lockID, err := s.locker.Acquire(ctx, objKey)
	if err != nil {
		return fmt.Errorf("acquire key lease: %w", err)
	}
	defer func() {
		if err := s.locker.Release(ctx, objKey, lockID); err != nil {
			hlog.CtxWarnf(ctx, "release lease on %s: %v", objKey, err)
		}
	}()
	return fn()
}
