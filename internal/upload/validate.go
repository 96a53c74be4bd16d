package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrTooManyFiles  = errors.New("too many files")
	ErrNotImage      = errors.New("not an image")
	ErrFileTooLarge  = errors.New("file too large")
	ErrEntryNotFound = errors.New("upload entry not found")
	ErrEntryBusy     = errors.New("upload entry is uploading")
	ErrQueueClosed   = errors.New("upload queue closed")
)

// sniffLen matches the header size mimetype inspects
const sniffLen = 3072

// Sniff detects the content type from the first bytes of r and returns a
// reader that still yields the whole stream
func Sniff(r io.Reader) (string, io.Reader, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]
	mtype := mimetype.Detect(header)
	return mtype.String(), io.MultiReader(bytes.NewReader(header), r), nil
}

// IsImage reports whether a sniffed content type is an image/* type
func IsImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// CheckImage validates size and sniffed type of a single file
func CheckImage(name string, size, maxBytes int64, r io.Reader) (string, io.Reader, error) {
	if maxBytes > 0 && size > maxBytes {
		return "", nil, fmt.Errorf("%s: %w (%d bytes, limit %d)", name, ErrFileTooLarge, size, maxBytes)
	}
	contentType, rest, err := Sniff(r)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", name, err)
	}
	if !IsImage(contentType) {
		return "", nil, fmt.Errorf("%s: %w (%s)", name, ErrNotImage, contentType)
	}
	return contentType, rest, nil
}
