/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	errEmptyUpload    = errors.New("upload is empty")
	errUploadTooLarge = errors.New("upload exceeds maximum size")
	errNotAnImage     = errors.New("upload is not a supported image")
)

// Sniffed content type → stored file extension.
var imageExtensions = map[string]string{
	"image/bmp":  ".bmp",
	"image/gif":  ".gif",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// imageStore keeps uploaded round images on local disk under random names.
type imageStore struct {
	dir     string
	maxSize int64
}

func newImageStore(dir string, maxSize int64) (*imageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &imageStore{
		dir:     dir,
		maxSize: maxSize,
	}, nil
}

// save stores the contents of r and returns the generated file name.
func (s *imageStore) save(r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", 0, err
	}

	switch {
	case len(data) == 0:
		return "", 0, errEmptyUpload
	case int64(len(data)) > s.maxSize:
		return "", 0, errUploadTooLarge
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return "", 0, errNotAnImage
	}

	name := uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", 0, fmt.Errorf("write upload: %w", err)
	}

	return name, int64(len(data)), nil
}

// path resolves a stored file name, rejecting anything save could not
// have produced.
func (s *imageStore) path(name string) (string, bool) {
	ext := filepath.Ext(name)

	known := false
	for _, e := range imageExtensions {
		if e == ext {
			known = true
			break
		}
	}
	if !known {
		return "", false
	}

	if _, err := uuid.Parse(strings.TrimSuffix(name, ext)); err != nil {
		return "", false
	}

	return filepath.Join(s.dir, name), true
}

func humanReadableSize(bytes int64) string {
	const unit int64 = 1000
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB",
		float64(bytes)/float64(div),
		"kMGTPE"[exp])
}
