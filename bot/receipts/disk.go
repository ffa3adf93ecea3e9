package receipts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/m5frls/gedanbot/core/logger"
)

// allowedExtensions are the receipt formats the archive accepts.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// AllowedExtension reports whether ext (with dot, any case) is accepted.
func AllowedExtension(ext string) bool {
	_, ok := allowedExtensions[strings.ToLower(ext)]
	return ok
}

// DiskStore archives receipts as files under a base directory.
// Object names follow receipt_order_<order>_<user>_<suffix><ext>, and
// lookup scans by the receipt_order_<order>_ prefix.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates the archive directory if needed.
func NewDiskStore(dir, publicBaseURL string) (*DiskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("receipts: empty archive dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("receipts: create archive dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *DiskStore) publicURL(name string) string {
	if s.baseURL == "" {
		return ""
	}
	return s.baseURL + "/" + name
}

func orderPrefix(orderID int64) string {
	return fmt.Sprintf("receipt_order_%d_", orderID)
}

// Save writes the receipt to disk under a collision-free name.
func (s *DiskStore) Save(ctx context.Context, orderID, userID int64, data []byte, ext string) (Ref, error) {
	ext = strings.ToLower(ext)
	if !AllowedExtension(ext) {
		return Ref{}, fmt.Errorf("receipts: unsupported extension %q", ext)
	}

	suffix := uuid.NewString()[:8]
	name := fmt.Sprintf("%s%d_%s%s", orderPrefix(orderID), userID, suffix, ext)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.SVCOrders.LogAttrs(ctx, slog.LevelError, "receipt.save.failed",
			slog.Int64("order_id", orderID),
			slog.String("err", err.Error()),
		)
		return Ref{}, fmt.Errorf("receipts: write %s: %w", name, err)
	}

	logger.SVCOrders.LogAttrs(ctx, slog.LevelInfo, "receipt.saved",
		slog.Int64("order_id", orderID),
		slog.Int64("user_id", userID),
		slog.String("receipt", name),
		slog.Int("file_size", len(data)),
	)
	return Ref{Name: name, PublicURL: s.publicURL(name), Size: int64(len(data))}, nil
}

// Find scans the archive for the order's receipt.
func (s *DiskStore) Find(_ context.Context, orderID int64) (Ref, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Ref{}, fmt.Errorf("receipts: read archive dir: %w", err)
	}
	prefix := orderPrefix(orderID)
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return Ref{}, fmt.Errorf("receipts: stat %s: %w", e.Name(), err)
		}
		return Ref{Name: e.Name(), PublicURL: s.publicURL(e.Name()), Size: info.Size()}, nil
	}
	return Ref{}, ErrNotFound
}

// Open reads archived receipt bytes. The name must come from Save or
// Find; path separators are rejected.
func (s *DiskStore) Open(_ context.Context, name string) ([]byte, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("receipts: invalid object name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("receipts: read %s: %w", name, err)
	}
	return data, nil
}
