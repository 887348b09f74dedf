// Package io reads Draw.io documents from disk and writes pipeline outputs.
//
// # Import
//
// Use [ReadDocument] to load a file, or [ReadFrom] for any io.Reader. Both
// cap the input at [MaxDocumentSize]:
//
//	raw, err := io.ReadDocument("diagram.drawio")
//
// A missing file yields FILE_NOT_FOUND so callers can distinguish it from
// decode failures.
//
// # Export
//
// [WriteArtifact] writes PNG or SVG bytes to a file. The file is written to a
// temporary sibling and renamed into place, so a watcher reading the output
// never sees a partial image.
//
// [WriteSummary] encodes a parsed model as indented JSON:
//
//	{
//	  "stats": {"cells": 5, "vertices": 2, "edges": 1, "layers": 1, "depth": 2},
//	  "pages": [{"name": "Page-1", "id": "abc", "compressed": true}],
//	  "attrs": {"dx": "1000", "grid": "1"},
//	  "cells": [{"id": "0"}, {"id": "1", "parent": "0"}, ...]
//	}
//
// Cells appear in document order with their geometry and uninterpreted
// attributes. Summaries are for reporting; they are not read back.
package io
