package upload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// FieldName is the multipart form field carrying the uploaded file.
const FieldName = "file"

// ErrNoFile means the request had no file under FieldName.
var ErrNoFile = errors.New("no file uploaded")

// Error wraps malformed or oversized multipart bodies.
type Error struct {
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Store saves uploads under Dir so they can be parsed from disk.
type Store struct {
	Dir      string
	MaxBytes int64
}

// SaveFromRequest copies the multipart file to a fresh temp file and returns its path.
// The caller owns the returned path and must Remove it.
func (s *Store) SaveFromRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBytes)
	if err := r.ParseMultipartForm(s.MaxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return "", ErrNoFile
		}
		return "", &Error{Err: err}
	}
	defer r.MultipartForm.RemoveAll()

	src, _, err := r.FormFile(FieldName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", ErrNoFile
		}
		return "", &Error{Err: err}
	}
	defer src.Close()

	return s.Save(src)
}

// Save writes src to a new file in Dir.
func (s *Store) Save(src io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	dst, err := os.CreateTemp(s.Dir, "upload-*.csv")
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		Remove(dst.Name())
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return filepath.Clean(dst.Name()), nil
}

// Remove deletes path if it still exists. Calling it twice is harmless.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
