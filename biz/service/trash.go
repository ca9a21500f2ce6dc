package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/lookloom/media_vault/pkg/keys"
	"github.com/lookloom/media_vault/pkg/storage"
)

// TrashEntry describes one recoverable object in a user's trash.
type TrashEntry struct {
	// Key is the trash-side key, OriginalKey the key a restore would
	// recreate.
	Key         string    `json:"key"`
	OriginalKey string    `json:"original_key"`
	Size        int64     `json:"size"`
	DeletedAt   time.Time `json:"deleted_at"`
}

// SoftDelete moves the object at key into the trash namespace. The copy
// lands before the original is deleted, so a crash mid-way leaves both
// copies rather than neither. Returns the trash key and the deletion time.
//
// A missing original is ErrFileNotFound; re-running a completed soft-delete
// therefore fails without touching the trash copy.
func (s *Service) SoftDelete(ctx context.Context, key string) (string, time.Time, error) {
	if err := keys.Validate(key); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if keys.IsTrashed(key) {
		return "", time.Time{}, fmt.Errorf("%w: key is already in trash: %s", ErrInvalidArgument, key)
	}

	trashKey := keys.TrashKey(key)
	err := s.withLease(ctx, key, func() error {
		if _, err := s.store.StatObject(ctx, key); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, key)
			}
			return fmt.Errorf("stat object: %w", err)
		}
		if err := s.store.CopyObject(ctx, key, trashKey); err != nil {
			return fmt.Errorf("copy to trash: %w", err)
		}
		if err := s.store.DeleteObject(ctx, key); err != nil {
			return fmt.Errorf("delete original: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", time.Time{}, err
	}

	deletedAt := s.now()
	hlog.CtxInfof(ctx, "soft-deleted %s -> %s", key, trashKey)
	return trashKey, deletedAt, nil
}

// Restore moves a trashed object back to its original key and returns the
// restoration time. A missing trash copy, or one older than the retention
// window, is ErrRecoveryExpired: the store's lifecycle rule may lag, so the
// age check holds the window exactly even where the expiry already should
// have run.
func (s *Service) Restore(ctx context.Context, key string) (time.Time, error) {
	if err := keys.Validate(key); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if keys.IsTrashed(key) {
		return time.Time{}, fmt.Errorf("%w: restore takes the original key, not the trash key: %s", ErrInvalidArgument, key)
	}

	trashKey := keys.TrashKey(key)
	err := s.withLease(ctx, key, func() error {
		info, err := s.store.StatObject(ctx, trashKey)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return fmt.Errorf("%w: %s", ErrRecoveryExpired, key)
			}
			return fmt.Errorf("stat trash object: %w", err)
		}
		if s.now().Sub(info.LastModified) > s.retention {
			return fmt.Errorf("%w: %s", ErrRecoveryExpired, key)
		}
		if err := s.store.CopyObject(ctx, trashKey, key); err != nil {
			return fmt.Errorf("copy from trash: %w", err)
		}
		if err := s.store.DeleteObject(ctx, trashKey); err != nil {
			return fmt.Errorf("delete trash copy: %w", err)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}

	restoredAt := s.now()
	hlog.CtxInfof(ctx, "restored %s <- %s", key, trashKey)
	return restoredAt, nil
}

// ListTrash returns one page of a user's trashed identity objects in the
// store's lexicographic key order. The listing is live; objects already
// expired by the store simply no longer appear.
func (s *Service) ListTrash(ctx context.Context, userID string) ([]TrashEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	page, err := s.store.ListObjects(ctx, keys.UserTrashPrefix(userID), int32(s.listLimit), "")
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}

	entries := make([]TrashEntry, 0, len(page.Objects))
	for _, obj := range page.Objects {
		original, ok := keys.OriginalKey(obj.Key)
		if !ok {
			continue
		}
		entries = append(entries, TrashEntry{
			Key:         obj.Key,
			OriginalKey: original,
			Size:        obj.Size,
			DeletedAt:   obj.LastModified,
		})
	}
	return entries, nil
}

// EmptyTrash purges every trashed object of one user, paging through the
// listing and batch-deleting each page. Returns the number of objects
// deleted. An empty trash issues no delete call at all.
func (s *Service) EmptyTrash(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("user id is required")
	}

	prefix := keys.UserTrashPrefix(userID)
	deleted := 0
	token := ""
	for {
		page, err := s.store.ListObjects(ctx, prefix, int32(s.purgePageSize), token)
		if err != nil {
			return deleted, fmt.Errorf("list trash page: %w", err)
		}
		if len(page.Objects) == 0 {
			break
		}

		batch := make([]string, 0, len(page.Objects))
		for _, obj := range page.Objects {
			batch = append(batch, obj.Key)
		}
		if err := s.store.DeleteObjects(ctx, batch); err != nil {
			return deleted, fmt.Errorf("purge trash batch: %w", err)
		}
		deleted += len(batch)

		if page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	if deleted > 0 {
		hlog.CtxInfof(ctx, "emptied trash for user %s, %d objects", userID, deleted)
	}
	return deleted, nil
}
