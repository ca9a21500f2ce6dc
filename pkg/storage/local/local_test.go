package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/lookloom/media_vault/pkg/storage"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func put(t *testing.T, s *Storage, key, content string) {
	t.Helper()
	err := s.PutObject(context.Background(), key, strings.NewReader(content), "image/jpeg", int64(len(content)), nil)
	if err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func TestPutGetStat(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	put(t, s, "identity/u1/front.jpg", "hello")

	rc, err := s.GetObject(ctx, "identity/u1/front.jpg")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("content = %q, want hello", data)
	}

	info, err := s.StatObject(ctx, "identity/u1/front.jpg")
	if err != nil {
		t.Fatalf("StatObject: %v", err)
	}
	if info.Size != 5 {
		t.Fatalf("size = %d, want 5", info.Size)
	}
	if info.ContentType != "image/jpeg" {
		t.Fatalf("content type = %s", info.ContentType)
	}
	if info.LastModified.IsZero() {
		t.Fatalf("missing modification time")
	}
}

func TestStatMissingObject(t *testing.T) {
	s := newStorage(t)
	_, err := s.StatObject(context.Background(), "identity/u1/absent.jpg")
	if !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestCopyObject(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	put(t, s, "identity/u1/front.jpg", "hello")

	if err := s.CopyObject(ctx, "identity/u1/front.jpg", "trash/identity/u1/front.jpg"); err != nil {
		t.Fatalf("CopyObject: %v", err)
	}

	info, err := s.StatObject(ctx, "trash/identity/u1/front.jpg")
	if err != nil {
		t.Fatalf("StatObject on copy: %v", err)
	}
	if info.ContentType != "image/jpeg" {
		t.Fatalf("copy lost content type: %s", info.ContentType)
	}

	if err := s.CopyObject(ctx, "identity/u1/absent.jpg", "x"); !errors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound for missing source, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	put(t, s, "identity/u1/front.jpg", "x")

	if err := s.DeleteObject(ctx, "identity/u1/front.jpg"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.DeleteObject(ctx, "identity/u1/front.jpg"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListObjectsPaginates(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	for _, key := range []string{"trash/identity/u1/a.jpg", "trash/identity/u1/b.jpg", "trash/identity/u1/c.jpg", "trash/identity/u2/d.jpg"} {
		put(t, s, key, "x")
	}

	page1, err := s.ListObjects(ctx, "trash/identity/u1/", 2, "")
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(page1.Objects) != 2 {
		t.Fatalf("first page size = %d, want 2", len(page1.Objects))
	}
	if page1.NextToken == "" {
		t.Fatalf("expected continuation token")
	}

	page2, err := s.ListObjects(ctx, "trash/identity/u1/", 2, page1.NextToken)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page2.Objects) != 1 {
		t.Fatalf("second page size = %d, want 1", len(page2.Objects))
	}
	if page2.NextToken != "" {
		t.Fatalf("unexpected token on final page: %s", page2.NextToken)
	}

	seen := map[string]bool{}
	for _, obj := range append(page1.Objects, page2.Objects...) {
		if !strings.HasPrefix(obj.Key, "trash/identity/u1/") {
			t.Fatalf("listing escaped prefix: %s", obj.Key)
		}
		seen[obj.Key] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct keys, got %d", len(seen))
	}
}

func TestDeleteObjectsBatch(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	keys := []string{"trash/identity/u1/a.jpg", "trash/identity/u1/b.jpg"}
	for _, key := range keys {
		put(t, s, key, "x")
	}

	if err := s.DeleteObjects(ctx, append(keys, "trash/identity/u1/absent.jpg")); err != nil {
		t.Fatalf("DeleteObjects: %v", err)
	}
	for _, key := range keys {
		if _, err := s.StatObject(ctx, key); !errors.Is(err, storage.ErrObjectNotFound) {
			t.Fatalf("%s survived batch delete: %v", key, err)
		}
	}
}
