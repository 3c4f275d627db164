package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNoFile is returned when no file name was supplied.
	ErrNoFile = errors.New("no file provided")
	// ErrNotCSV is returned for files without a .csv extension.
	ErrNotCSV = errors.New("only .csv files are accepted")
)

// TooLargeError is returned when an upload exceeds the size limit.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file exceeds %d bytes", e.Limit)
}

// Staged is an uploaded file copied to local disk.
type Staged struct {
	Path   string
	Name   string // sanitized original name
	Size   int64
	SHA256 string
}

// Remove deletes the staged file. Removing an already-removed file is not an
// error.
func (s *Staged) Remove() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing staged file: %w", err)
	}
	return nil
}

// AllowedFile reports whether name carries a .csv extension.
func AllowedFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// Sanitize reduces name to a safe base name of letters, digits, dots, dashes
// and underscores.
func Sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" || out == "_" {
		return "upload.csv"
	}
	return out
}

// Stage copies r into dir under a unique name, hashing it on the way. An
// empty dir means os.TempDir(). maxBytes <= 0 disables the size limit.
func Stage(dir, filename string, r io.Reader, maxBytes int64) (*Staged, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrNoFile
	}
	if !AllowedFile(filename) {
		return nil, ErrNotCSV
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	name := Sanitize(filename)
	path := filepath.Join(dir, uuid.NewString()+"-"+name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating staged file: %w", err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && maxBytes > 0 && n > maxBytes {
		err = &TooLargeError{Limit: maxBytes}
	}
	if err != nil {
		os.Remove(path)
		var tooLarge *TooLargeError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("staging upload: %w", err)
	}

	return &Staged{
		Path:   path,
		Name:   name,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// With stages r, calls fn, and removes the staged file on every exit path,
// including a panic in fn.
func With(dir, filename string, r io.Reader, maxBytes int64, fn func(*Staged) error) (err error) {
	s, err := Stage(dir, filename, r, maxBytes)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := s.Remove(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn(s)
}
