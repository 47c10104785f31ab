// Package attach persists payment-proof uploads. Files are stored opaquely,
// named by booking ID; nothing ever reads them back through the core.
package attach

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	bookingserrors "busly/internal/bookings/errors"
)

// allowedExtensions mirrors the image types the booking form accepts.
var allowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// Store writes attachments under a single upload directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save persists the bytes as {bookingID}.{ext} and returns that name, which
// becomes the attachmentRef on the booking's records. The name is derived
// deterministically so records and files can be correlated without a lookup
// table.
func (s *Store) Save(bookingID string, data []byte, extension string) (string, error) {
	ext := normalizeExtension(extension)
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: %q", bookingserrors.ErrBadExtension, extension)
	}

	name := bookingID + "." + ext
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}

	return name, nil
}

func normalizeExtension(extension string) string {
	ext := strings.ToLower(strings.TrimSpace(extension))
	return strings.TrimPrefix(ext, ".")
}
