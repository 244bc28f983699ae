package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	appeng "github.com/estudio-contable/backend/internal/application/engagement"
)

var _ appeng.ReportArchive = (*LocalReportArchive)(nil)

// ErrInvalidKey is returned for keys that escape the archive root
var ErrInvalidKey = errors.New("invalid storage key")

// LocalReportArchive keeps reports on local disk for deployments without
// object storage. Download links point at BaseURL, served by the API.
type LocalReportArchive struct {
	root    string
	BaseURL string
	now     func() time.Time
}

// NewLocalReportArchive creates the root directory if needed
func NewLocalReportArchive(root, baseURL string) (*LocalReportArchive, error) {
	if root == "" {
		return nil, errors.New("local storage directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalReportArchive{
		root:    root,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// Path resolves storageKey inside the root
func (l *LocalReportArchive) Path(storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	clean := filepath.Clean("/" + storageKey)
	if strings.Contains(storageKey, "..") || clean == "/" {
		return "", ErrInvalidKey
	}
	return filepath.Join(l.root, filepath.FromSlash(clean)), nil
}

// Upload writes data atomically via a temp file and rename
func (l *LocalReportArchive) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	path, err := l.Path(storageKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

// GenerateDownloadURL links to the API download route. Expiry is advisory;
// the route itself is authenticated and owner-scoped.
func (l *LocalReportArchive) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if _, err := l.Path(storageKey); err != nil {
		return "", time.Time{}, err
	}
	expiresAt := l.now().Add(expiresIn)
	u := l.BaseURL + "/" + (&url.URL{Path: storageKey}).EscapedPath() +
		"?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return u, expiresAt, nil
}

// Open reads a stored report
func (l *LocalReportArchive) Open(storageKey string) ([]byte, error) {
	path, err := l.Path(storageKey)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
