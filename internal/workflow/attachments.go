package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Upload is one file received with a create or provide request.
type Upload struct {
	Name   string
	Reader io.Reader
}

// Attachments stores uploaded files in a local directory under
// collision-free names. Stored names are "<uuid>_<original>".
type Attachments struct {
	dir      string
	maxBytes int64
}

// NewAttachments returns a store rooted at dir. maxBytes <= 0 disables the size limit.
func NewAttachments(dir string, maxBytes int64) *Attachments {
	return &Attachments{dir: dir, maxBytes: maxBytes}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Save writes the upload and returns its stored name.
func (a *Attachments) Save(up Upload) (string, error) {
	if err := os.MkdirAll(a.dir, 0o750); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	base := unsafeChars.ReplaceAllString(filepath.Base(up.Name), "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	stored := uuid.NewString() + "_" + base
	path := filepath.Join(a.dir, stored)

	// #nosec G304 - name is generated above
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	r := up.Reader
	if a.maxBytes > 0 {
		r = io.LimitReader(r, a.maxBytes+1)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && a.maxBytes > 0 && n > a.maxBytes {
		err = fmt.Errorf("%s exceeds %d bytes: %w", up.Name, a.maxBytes, ErrInvalidInput)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return stored, nil
}

// SaveAll stores every upload, removing what was written if one fails.
func (a *Attachments) SaveAll(ups []Upload) ([]string, error) {
	names := make([]string, 0, len(ups))
	for _, up := range ups {
		name, err := a.Save(up)
		if err != nil {
			a.Remove(names...)
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Open returns the stored file. Names that are not plain file names are rejected.
func (a *Attachments) Open(stored string) (*os.File, error) {
	if stored == "" || filepath.Base(stored) != stored || strings.HasPrefix(stored, ".") {
		return nil, fmt.Errorf("attachment %q: %w", stored, ErrInvalidInput)
	}
	// #nosec G304 - stored is a bare file name checked above
	f, err := os.Open(filepath.Join(a.dir, stored))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("attachment %q: %w", stored, ErrNotFound)
	}
	return f, err
}

// Remove deletes stored files, ignoring ones already gone.
func (a *Attachments) Remove(stored ...string) {
	for _, name := range stored {
		if name == "" || filepath.Base(name) != name {
			continue
		}
		_ = os.Remove(filepath.Join(a.dir, name))
	}
}

// DisplayName strips the uuid prefix from a stored name.
func DisplayName(stored string) string {
	if len(stored) > 37 && stored[36] == '_' {
		if _, err := uuid.Parse(stored[:36]); err == nil {
			return stored[37:]
		}
	}
	return stored
}
