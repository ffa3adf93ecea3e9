package receipts

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir(), "https://files.example.com/receipts")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestDiskStoreSaveAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	data := []byte("%PDF-1.4 fake receipt")
	ref, err := s.Save(ctx, 17, 100500, data, ".pdf")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref.Name, "receipt_order_17_100500_") || !strings.HasSuffix(ref.Name, ".pdf") {
		t.Fatalf("unexpected object name %q", ref.Name)
	}
	if ref.Size != int64(len(data)) {
		t.Fatalf("size = %d, want %d", ref.Size, len(data))
	}
	if ref.PublicURL != "https://files.example.com/receipts/"+ref.Name {
		t.Fatalf("public url = %q", ref.PublicURL)
	}

	found, err := s.Find(ctx, 17)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Name != ref.Name || found.Size != ref.Size {
		t.Fatalf("find mismatch: %+v vs %+v", found, ref)
	}

	blob, err := s.Open(ctx, found.Name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(blob) != string(data) {
		t.Fatal("open returned different bytes")
	}
}

func TestDiskStoreFindMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Find(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDiskStorePrefixDoesNotCrossOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Save(ctx, 12, 1, []byte("a"), ".jpg"); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Order 1 must not pick up order 12's receipt.
	if _, err := s.Find(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for order 1, got %v", err)
	}
}

func TestDiskStoreRejectsUnknownExtension(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Save(context.Background(), 1, 1, []byte("x"), ".exe"); err == nil {
		t.Fatal("expected an error for unsupported extension")
	}
}

func TestDiskStoreOpenRejectsPaths(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Open(context.Background(), "../escape.pdf"); err == nil {
		t.Fatal("expected an error for path traversal")
	}
}

func TestAllowedExtension(t *testing.T) {
	for _, ext := range []string{".pdf", ".jpg", ".jpeg", ".png", ".PDF"} {
		if !AllowedExtension(ext) {
			t.Errorf("%s must be allowed", ext)
		}
	}
	for _, ext := range []string{".exe", ".doc", "", "pdf"} {
		if AllowedExtension(ext) {
			t.Errorf("%s must be rejected", ext)
		}
	}
}
