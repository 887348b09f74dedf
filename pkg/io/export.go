package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/drawview/pkg/codec"
	errs "github.com/matzehuels/drawview/pkg/errors"
	"github.com/matzehuels/drawview/pkg/model"
)

// Summary is the JSON form of a parsed diagram.
type Summary struct {
	Stats model.Stats       `json:"stats"`
	Pages []codec.Page      `json:"pages,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Cells []*model.Cell     `json:"cells"`
}

// NewSummary builds a summary of m. pages may be nil for bare models.
func NewSummary(m *model.Model, pages []codec.Page) Summary {
	return Summary{
		Stats: m.Stats(),
		Pages: pages,
		Attrs: m.Attrs(),
		Cells: m.Cells(),
	}
}

// WriteSummary encodes s as indented JSON.
func WriteSummary(s Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteArtifact writes data to path, creating parent directories.
func WriteArtifact(path string, data []byte) error {
	if err := errs.ValidateOutputPath(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", path)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
