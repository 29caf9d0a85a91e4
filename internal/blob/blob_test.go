package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	info, err := s.Put(ctx, "docs/a/report.pdf", strings.NewReader("hello"), "application/pdf")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 5 {
		t.Errorf("size = %d, want 5", info.Size)
	}

	got, rc, err := s.Get(ctx, "docs/a/report.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q", body)
	}
	if got.ContentType != "application/pdf" {
		t.Errorf("content type = %q", got.ContentType)
	}

	if err := s.Delete(ctx, "docs/a/report.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := s.Get(ctx, "docs/a/report.pdf"); !errors.Is(err, ErrNotExist) {
		t.Errorf("get after delete: err = %v, want ErrNotExist", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemory())
}

func TestFilesystemStore(t *testing.T) {
	fs, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem: %v", err)
	}
	testStore(t, fs)
}

func TestKeySanitization(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, key := range []string{"", "/abs/path", "../escape", "a/../../b"} {
		if _, err := m.Put(ctx, key, strings.NewReader("x"), ""); err == nil {
			t.Errorf("Put(%q) should reject the key", key)
		}
	}
}
