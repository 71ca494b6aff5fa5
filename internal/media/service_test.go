package media_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-showcase/internal/media"
	"github.com/google/uuid"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type stubReferences struct {
	counts map[uuid.UUID]int
	err    error
}

func (s *stubReferences) CountImageReferences(_ context.Context, id uuid.UUID, _ string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.counts[id], nil
}

func newTestService(t *testing.T, opts ...media.ServiceOption) (media.Service, *media.MemoryRepository, *media.MemoryStore) {
	t.Helper()
	repo := media.NewMemoryRepository()
	store := media.NewMemoryStore("/uploads")
	fixed := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	base := []media.ServiceOption{media.WithClock(func() time.Time { return fixed })}
	return media.NewService(repo, store, append(base, opts...)...), repo, store
}

func TestServiceUploadStoresObjectAndRecord(t *testing.T) {
	svc, _, store := newTestService(t)
	img, err := svc.Upload(context.Background(), media.UploadRequest{
		Filename: "Logo.PNG",
		Body:     bytes.NewReader(pngHeader),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(img.URL, "/uploads/2024/05/") || !strings.HasSuffix(img.URL, ".png") {
		t.Fatalf("unexpected url %q", img.URL)
	}
	if img.ContentType != "image/png" {
		t.Fatalf("expected sniffed content type, got %q", img.ContentType)
	}
	if img.Size != int64(len(pngHeader)) || img.UsageCount != 0 {
		t.Fatalf("unexpected image %+v", img)
	}
	if _, ok := store.Object(img.Key); !ok {
		t.Fatalf("expected object %q in store", img.Key)
	}
}

func TestServiceUploadValidation(t *testing.T) {
	cases := []struct {
		name string
		req  media.UploadRequest
		want error
	}{
		{name: "missing body", req: media.UploadRequest{Filename: "a.png"}, want: media.ErrFileRequired},
		{name: "missing filename", req: media.UploadRequest{Body: bytes.NewReader(pngHeader)}, want: media.ErrFileRequired},
		{name: "bad extension", req: media.UploadRequest{Filename: "run.exe", Body: bytes.NewReader(pngHeader)}, want: media.ErrExtensionNotAllowed},
		{name: "declared too large", req: media.UploadRequest{Filename: "a.png", Size: 64, Body: bytes.NewReader(pngHeader)}, want: media.ErrFileTooLarge},
		{name: "actual too large", req: media.UploadRequest{Filename: "a.png", Body: bytes.NewReader(bytes.Repeat([]byte("x"), 64))}, want: media.ErrFileTooLarge},
		{name: "empty file", req: media.UploadRequest{Filename: "a.png", Body: bytes.NewReader(nil)}, want: media.ErrFileRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t, media.WithMaxUploadSize(32))
			if _, err := svc.Upload(context.Background(), tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			images, _ := repo.List(context.Background())
			if len(images) != 0 {
				t.Fatalf("expected no image records, got %d", len(images))
			}
		})
	}
}

func TestServiceDeleteRefusedWhileReferenced(t *testing.T) {
	refs := &stubReferences{counts: map[uuid.UUID]int{}}
	svc, repo, store := newTestService(t, media.WithReferenceCounter(refs))
	ctx := context.Background()
	img, err := svc.Upload(ctx, media.UploadRequest{Filename: "cover.png", Body: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	refs.counts[img.ID] = 2

	if err := svc.Delete(ctx, img.ID); !errors.Is(err, media.ErrImageInUse) {
		t.Fatalf("expected ErrImageInUse, got %v", err)
	}
	stored, err := repo.GetByID(ctx, img.ID)
	if err != nil {
		t.Fatalf("image should remain: %v", err)
	}
	if stored.UsageCount != 2 {
		t.Fatalf("expected counter reconciled to 2, got %d", stored.UsageCount)
	}
	if _, ok := store.Object(img.Key); !ok {
		t.Fatal("object must remain while referenced")
	}

	refs.counts[img.ID] = 0
	if err := svc.Delete(ctx, img.ID); err != nil {
		t.Fatalf("delete unreferenced: %v", err)
	}
	if _, ok := store.Object(img.Key); ok {
		t.Fatal("expected object to be removed")
	}
	if _, err := repo.GetByID(ctx, img.ID); !media.IsNotFound(err) {
		t.Fatalf("expected record removed, got %v", err)
	}
}

func TestServiceDeleteReconcilesStaleCounter(t *testing.T) {
	refs := &stubReferences{counts: map[uuid.UUID]int{}}
	svc, repo, _ := newTestService(t, media.WithReferenceCounter(refs))
	ctx := context.Background()
	img, err := svc.Upload(ctx, media.UploadRequest{Filename: "stale.png", Body: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.AdjustUsage(ctx, map[uuid.UUID]int{img.ID: 3}); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if err := svc.Delete(ctx, img.ID); err != nil {
		t.Fatalf("expected delete to succeed once references are computed as zero: %v", err)
	}
	if _, err := repo.GetByID(ctx, img.ID); !media.IsNotFound(err) {
		t.Fatalf("expected record removed, got %v", err)
	}
}

func TestServiceDeleteUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)
	if err := svc.Delete(context.Background(), uuid.New()); !media.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdjustUsageNeverNegative(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	img, err := svc.Upload(ctx, media.UploadRequest{Filename: "a.gif", Body: bytes.NewReader([]byte("GIF89a...."))})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.AdjustUsage(ctx, map[uuid.UUID]int{img.ID: -5, uuid.New(): 1}); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	stored, _ := repo.GetByID(ctx, img.ID)
	if stored.UsageCount != 0 {
		t.Fatalf("expected clamped counter, got %d", stored.UsageCount)
	}
}

func TestServiceRehost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/banner":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(pngHeader)
		case "/images/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	svc, _, _ := newTestService(t, media.WithHTTPClient(server.Client()))
	ctx := context.Background()

	img, err := svc.Rehost(ctx, server.URL+"/images/banner")
	if err != nil {
		t.Fatalf("rehost: %v", err)
	}
	if img.Filename != "banner.png" || img.ContentType != "image/png" {
		t.Fatalf("unexpected rehosted image %+v", img)
	}

	if _, err := svc.Rehost(ctx, server.URL+"/missing.png"); !errors.Is(err, media.ErrRemoteFetchFailed) {
		t.Fatalf("expected ErrRemoteFetchFailed, got %v", err)
	}
	if _, err := svc.Rehost(ctx, server.URL+"/images/page.html"); !errors.Is(err, media.ErrExtensionNotAllowed) {
		t.Fatalf("expected ErrExtensionNotAllowed, got %v", err)
	}
	if _, err := svc.Rehost(ctx, "ftp://example.com/a.png"); !errors.Is(err, media.ErrRemoteURLInvalid) {
		t.Fatalf("expected ErrRemoteURLInvalid, got %v", err)
	}
}
