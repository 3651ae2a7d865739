// Package uploads validates and stores entity images under the web-asset
// root and hands back the public path they are served from.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload, in bytes.
const MaxImageSize = 5 * 1024 * 1024

// publicPrefix is both the URL prefix and the directory under the root.
const publicPrefix = "/images/"

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Category selects the sub-directory an image is stored in.
type Category string

const (
	CategoryFish   Category = "fish"
	CategoryZone   Category = "zone"
	CategoryVessel Category = "vessel"
)

var (
	ErrMissingFile       = errors.New("an image must be uploaded")
	ErrEmptyFile         = errors.New("the image file is empty")
	ErrFileTooLarge      = errors.New("the image file is too large (max 5MB)")
	ErrUnsupportedFormat = errors.New("only JPG, PNG or GIF images are allowed")

	// ErrOutsideRoot is returned for paths that do not point into the images directory.
	ErrOutsideRoot = errors.New("path is outside the images directory")
)

// FailureKind classifies filesystem failures for logging.
type FailureKind int

const (
	IOFailure FailureKind = iota
	AccessDenied
)

func (k FailureKind) String() string {
	if k == AccessDenied {
		return "access denied"
	}
	return "i/o failure"
}

// StorageError wraps a filesystem failure while writing or removing an image.
type StorageError struct {
	Kind FailureKind
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("image storage %s at %s: %v", e.Kind, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(p string, err error) error {
	kind := IOFailure
	if errors.Is(err, fs.ErrPermission) {
		kind = AccessDenied
	}
	return &StorageError{Kind: kind, Path: p, Err: err}
}

// File is an uploaded image as received from a form.
type File struct {
	Name string
	Data []byte
}

// FromRequest returns the file posted under field, or nil if the form
// carries none. At most MaxImageSize+1 bytes are read, which is enough to
// tell an oversized file apart. The form must already be parsed.
func FromRequest(r *http.Request, field string) (*File, error) {
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload %q: %w", header.Filename, err)
	}
	return &File{Name: header.Filename, Data: data}, nil
}

// Validate checks presence, size and extension of an upload.
func Validate(f *File) error {
	if f == nil {
		return ErrMissingFile
	}
	if len(f.Data) == 0 {
		return ErrEmptyFile
	}
	if len(f.Data) > MaxImageSize {
		return ErrFileTooLarge
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(baseName(f.Name)))] {
		return ErrUnsupportedFormat
	}
	return nil
}

// Store keeps images on the local filesystem under root.
type Store struct {
	root   string
	logger *slog.Logger
}

func NewStore(root string, logger *slog.Logger) *Store {
	return &Store{root: root, logger: logger}
}

// Save validates f and writes it under images/<category>/ with a unique
// name. The returned path is only handed out once the data is synced.
func (s *Store) Save(category Category, f *File) (string, error) {
	if err := Validate(f); err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, "images", string(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", storageError(dir, err)
	}

	name := uniqueName(f.Name)
	full := filepath.Join(dir, name)
	if err := writeFile(full, f.Data); err != nil {
		return "", storageError(full, err)
	}
	return path.Join(publicPrefix, string(category), name), nil
}

func writeFile(full string, data []byte) error {
	out, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
	}
	return err
}

// Exists reports whether the image behind a public path is on disk.
func (s *Store) Exists(public string) bool {
	full, err := s.resolve(public)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the image behind a public path. Empty paths and files
// that are already gone are not an error.
func (s *Store) Remove(public string) error {
	if public == "" {
		return nil
	}
	full, err := s.resolve(public)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return storageError(full, err)
	}
	return nil
}

// Discard removes an image that is no longer referenced. Files that are
// already gone are skipped. Failures are logged and otherwise ignored: a
// stale file never fails a request.
func (s *Store) Discard(public string) {
	if public == "" {
		return
	}
	if _, err := s.resolve(public); err == nil && !s.Exists(public) {
		s.logger.Debug("image already removed", "path", public)
		return
	}

	err := s.Remove(public)
	if err == nil {
		return
	}

	attrs := []any{"path", public, "error", err}
	var se *StorageError
	if errors.As(err, &se) {
		attrs = append(attrs, "kind", se.Kind.String())
	}
	s.logger.Warn("failed to remove image", attrs...)
}

// resolve maps a public path to a file under root/images.
func (s *Store) resolve(public string) (string, error) {
	clean := path.Clean("/" + strings.TrimPrefix(public, "/"))
	if !strings.HasPrefix(clean, publicPrefix) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, public)
	}
	return filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// uniqueName prefixes a random token to the declared base name with spaces
// replaced by underscores. The extension is lower-cased.
func uniqueName(declared string) string {
	base := baseName(declared)
	ext := filepath.Ext(base)
	stem := strings.ReplaceAll(strings.TrimSuffix(base, ext), " ", "_")
	return uuid.NewString() + "_" + stem + strings.ToLower(ext)
}

// baseName strips any client-side directory, whichever separator it uses.
func baseName(declared string) string {
	if i := strings.LastIndexAny(declared, `/\`); i >= 0 {
		return declared[i+1:]
	}
	return declared
}
