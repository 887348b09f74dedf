package io

import (
	"errors"
	"io"
	"io/fs"
	"os"

	errs "github.com/matzehuels/drawview/pkg/errors"
)

// MaxDocumentSize bounds the size of a document read from disk or a request.
const MaxDocumentSize = 32 << 20

// ReadFrom reads a whole document from r. Inputs larger than
// MaxDocumentSize are rejected with INVALID_INPUT.
func ReadFrom(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "read document")
	}
	if len(data) > MaxDocumentSize {
		return nil, errs.New(errs.ErrCodeInvalidInput, "document exceeds %d bytes", MaxDocumentSize)
	}
	return data, nil
}

// ReadDocument reads the file at path.
func ReadDocument(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.New(errs.ErrCodeFileNotFound, "file not found: %s", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err == nil && info.IsDir() {
		return nil, errs.New(errs.ErrCodeInvalidPath, "%s is a directory", path)
	}
	return ReadFrom(f)
}
