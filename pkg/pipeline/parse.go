package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/drawview/pkg/codec"
	"github.com/matzehuels/drawview/pkg/model"
	"github.com/matzehuels/drawview/pkg/observability"
)

// Decode turns a stored payload into graph-model XML.
//
// Bare and wrapped XML is returned as stored; a wrapper whose first page is
// compressed yields the decoded page.
func Decode(ctx context.Context, raw []byte) (string, error) {
	hooks := observability.Pipeline()
	hooks.OnDecodeStart(ctx, len(raw))
	start := time.Now()

	text, err := codec.Decode(raw)
	if err == nil {
		text, err = codec.Unwrap(text)
	}

	hooks.OnDecodeComplete(ctx, len(text), time.Since(start), err)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Parse builds and validates the diagram model.
func Parse(ctx context.Context, xmlText string) (*model.Model, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, len(xmlText))
	start := time.Now()

	m, err := model.Parse(xmlText)

	cells := 0
	if m != nil {
		cells = m.Len()
	}
	hooks.OnParseComplete(ctx, cells, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return m, nil
}
