// Package fileutil reads and writes the text documents the indexer
// works on, with the path expansion and size limits the CLI expects.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxDocumentSize caps how much of a document the indexer will load.
// Annotated manuscripts are plain text; anything bigger is a mistake.
const MaxDocumentSize = 64 << 20

// Common file errors.
var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrNotRegular  = errors.New("not a regular file")
	ErrTooLarge    = errors.New("document too large")
	ErrNotDocument = errors.New("document is not valid text")
)

// ExpandUser resolves a leading ~ or ~/ to the current user's home
// directory and returns the absolute path.
func ExpandUser(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return filepath.Abs(path)
}

// ReadDocument loads a document as a string, expanding the path and
// enforcing MaxDocumentSize. The content must be UTF-8 text.
func ReadDocument(path string) (string, error) {
	abs, err := ExpandUser(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	if info.Size() > MaxDocumentSize {
		return "", fmt.Errorf("%s (%d bytes): %w", path, info.Size(), ErrTooLarge)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", path, ErrNotDocument)
	}
	return string(data), nil
}

// WriteDocument writes a document, creating parent directories as
// needed.
func WriteDocument(path, data string) error {
	abs, err := ExpandUser(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return err
	}
	return os.WriteFile(abs, []byte(data), 0644)
}

// CopyFile copies src to dst, creating dst's parent directories as
// needed. Used for pre-rewrite backups.
func CopyFile(src, dst string) error {
	srcAbs, err := ExpandUser(src)
	if err != nil {
		return err
	}
	dstAbs, err := ExpandUser(dst)
	if err != nil {
		return err
	}

	in, err := os.Open(srcAbs)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dstAbs), 0755); err != nil {
		return err
	}
	out, err := os.Create(dstAbs)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
