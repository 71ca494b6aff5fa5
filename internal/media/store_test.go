package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "uploads/")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	url, err := store.Put(ctx, "2024/01/a.png", strings.NewReader("data"), "image/png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/uploads/2024/01/a.png" {
		t.Fatalf("unexpected url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "2024", "01", "a.png"))
	if err != nil || string(data) != "data" {
		t.Fatalf("expected object on disk, got %q (%v)", data, err)
	}

	if err := store.Delete(ctx, "2024/01/a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "2024/01/a.png"); err != nil {
		t.Fatalf("deleting a missing object should be a no-op: %v", err)
	}
}

func TestFileStoreKeepsKeysInsideDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "uploads"), "/uploads")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	target, err := store.resolve("../../etc/passwd")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasPrefix(target, filepath.Join(dir, "uploads")) {
		t.Fatalf("resolved path escaped the store: %s", target)
	}
	if _, err := store.resolve(" "); err == nil {
		t.Fatal("expected empty key to be rejected")
	}
}
