// Package local implements the object store gateway on the local
// filesystem. It backs development setups and the test suites; production
// uses the s3 backend.
package local

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lookloom/media_vault/pkg/storage"
)

// Storage implements storage.Storage using a directory tree. Object keys
// map to relative paths under basePath. Content type and user metadata are
// held in memory and lost on restart, which is acceptable for a development
// backend.
type Storage struct {
	basePath string

	mu   sync.RWMutex
	meta map[string]objectMeta

	fetchClient *http.Client
}

type objectMeta struct {
	contentType string
	metadata    map[string]string
}

// New creates a local gateway rooted at basePath.
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "data/objects"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Storage{
		basePath:    basePath,
		meta:        make(map[string]objectMeta),
		fetchClient: &http.Client{Timeout: 10 * time.Minute},
	}, nil
}

// IngestFromURL streams the source body to a temp file and renames it into
// place, so a failed ingest never leaves a readable object at key.
func (s *Storage) IngestFromURL(ctx context.Context, sourceURL, key, contentType string, metadata map[string]string, progress storage.ProgressFunc) (*storage.IngestResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build source request: %w", err)
	}

	resp, err := s.fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch source: unexpected status %d from %s", resp.StatusCode, sourceURL)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	fullPath := s.keyToPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".ingest-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	var transferred int64
	buf := make([]byte, 64*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := tmp.Write(buf[:n]); writeErr != nil {
				tmp.Close()
				os.Remove(tmpPath)
				return nil, fmt.Errorf("write object: %w", writeErr)
			}
			transferred += int64(n)
			if progress != nil {
				progress(transferred, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return nil, fmt.Errorf("read source: %w", readErr)
		}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("finalize object: %w", err)
	}

	s.setMeta(key, contentType, metadata)
	return &storage.IngestResult{Key: key, Size: transferred}, nil
}

// PutObject writes a file under key.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64, metadata map[string]string) error {
	fullPath := s.keyToPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("write file: %w", err)
	}

	s.setMeta(key, contentType, metadata)
	return nil
}

// GetObject opens the file under key.
func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// StatObject stats the file under key.
func (s *Storage) StatObject(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	fi, err := os.Stat(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}

	m := s.getMeta(key)
	return &storage.ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		ContentType:  m.contentType,
		LastModified: fi.ModTime(),
		Metadata:     m.metadata,
	}, nil
}

// CopyObject duplicates the file and carries its metadata over.
func (s *Storage) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	src, err := os.Open(s.keyToPath(srcKey))
	if err != nil {
		if os.IsNotExist(err) {
			return storage.ErrObjectNotFound
		}
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dstPath := s.keyToPath(dstKey)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return fmt.Errorf("copy object: %w", err)
	}

	m := s.getMeta(srcKey)
	s.setMeta(dstKey, m.contentType, m.metadata)
	return nil
}

// DeleteObject removes the file. Absent keys are not an error.
func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	fullPath := s.keyToPath(key)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete file: %w", err)
	}

	s.dropMeta(key)

	// Prune now-empty parent directories up to the base path.
	dir := filepath.Dir(fullPath)
	for dir != s.basePath {
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
	return nil
}

// DeleteObjects removes each key; the batch semantics of the remote store
// degrade to a loop on the filesystem.
func (s *Storage) DeleteObjects(ctx context.Context, objKeys []string) error {
	if len(objKeys) > storage.MaxListPageSize {
		return fmt.Errorf("batch delete limited to %d keys, got %d", storage.MaxListPageSize, len(objKeys))
	}
	for _, key := range objKeys {
		if err := s.DeleteObject(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// ListObjects lists keys under prefix in lexicographic order. The
// continuation token is the last key of the previous page.
func (s *Storage) ListObjects(ctx context.Context, prefix string, maxKeys int32, token string) (*storage.ListPage, error) {
	if maxKeys <= 0 || maxKeys > storage.MaxListPageSize {
		maxKeys = storage.MaxListPageSize
	}

	var all []string
	err := filepath.Walk(s.basePath, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || strings.HasPrefix(fi.Name(), ".ingest-") {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			all = append(all, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk storage directory: %w", err)
	}
	sort.Strings(all)

	page := &storage.ListPage{}
	for _, key := range all {
		if token != "" && key <= token {
			continue
		}
		if int32(len(page.Objects)) == maxKeys {
			page.NextToken = page.Objects[len(page.Objects)-1].Key
			return page, nil
		}
		info, err := s.StatObject(ctx, key)
		if err != nil {
			if err == storage.ErrObjectNotFound {
				continue // deleted between walk and stat
			}
			return nil, err
		}
		page.Objects = append(page.Objects, *info)
	}
	return page, nil
}

// PresignUpload returns a pseudo-signed API path. Local deployments serve
// uploads through the service itself, so no cryptographic signing happens.
func (s *Storage) PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (*storage.PresignedUpload, error) {
	if expires <= 0 {
		expires = storage.DefaultPresignUploadExpiry
	}
	u := fmt.Sprintf("/api/v1/media/file/%s?expires=%d", key, time.Now().Add(expires).Unix())
	return &storage.PresignedUpload{URL: u, Key: key}, nil
}

// PresignView returns a pseudo-signed API path, mirroring PresignUpload.
func (s *Storage) PresignView(ctx context.Context, key string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = storage.DefaultPresignViewExpiry
	}
	return fmt.Sprintf("/api/v1/media/file/%s?expires=%d", key, time.Now().Add(expires).Unix()), nil
}

// PublicURL returns the API path for a public object.
func (s *Storage) PublicURL(key string) string {
	return "/api/v1/media/file/" + key
}

// Type returns "local" as the backend identifier.
func (s *Storage) Type() string {
	return "local"
}

// BasePath returns the root directory of the storage.
func (s *Storage) BasePath() string {
	return s.basePath
}

func (s *Storage) keyToPath(key string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(key))
}

func (s *Storage) setMeta(key, contentType string, metadata map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var copied map[string]string
	if len(metadata) > 0 {
		copied = make(map[string]string, len(metadata))
		for k, v := range metadata {
			copied[k] = v
		}
	}
	s.meta[key] = objectMeta{contentType: contentType, metadata: copied}
}

func (s *Storage) getMeta(key string) objectMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta[key]
}

func (s *Storage) dropMeta(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meta, key)
}
