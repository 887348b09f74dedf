package model

import (
	"strings"

	errs "github.com/matzehuels/drawview/pkg/errors"
)

// link resolves parent references into child lists and checks the tree
// invariants: a single parentless root, no dangling parents, no cycles.
// Violations are PARSE_CORRUPT_MODEL; cells are never dropped to repair a
// model.
func (m *Model) link() error {
	if len(m.order) == 0 {
		return errs.New(errs.ErrCodeParseCorruptModel, "model has no cells")
	}

	var roots []string
	for _, id := range m.order {
		c := m.cells[id]
		if c.Parent == "" {
			roots = append(roots, id)
			continue
		}
		parent, ok := m.cells[c.Parent]
		if !ok {
			return errs.New(errs.ErrCodeParseCorruptModel, "cell %q references unknown parent %q", id, c.Parent)
		}
		parent.children = append(parent.children, id)
	}

	switch len(roots) {
	case 0:
		return errs.New(errs.ErrCodeParseCorruptModel, "model has no root cell")
	case 1:
		m.root = roots[0]
	default:
		return errs.New(errs.ErrCodeParseCorruptModel, "model has %d root cells (%s)", len(roots), strings.Join(roots, ", "))
	}

	return m.detectCycles()
}

// detectCycles follows each cell's parent chain with white/gray/black
// coloring. Every chain ends at the root or revisits a gray cell, so the walk
// terminates after at most one visit per cell.
func (m *Model) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(m.cells))
	for _, start := range m.order {
		if color[start] != white {
			continue
		}

		var chain []string
		id := start
		for id != "" && color[id] != black {
			if color[id] == gray {
				return errs.New(errs.ErrCodeParseCorruptModel, "cycle in parent chain: %s", cycleString(chain, id))
			}
			color[id] = gray
			chain = append(chain, id)
			id = m.cells[id].Parent
		}
		for _, id := range chain {
			color[id] = black
		}
	}
	return nil
}

// cycleString renders the looping part of chain, from the first occurrence
// of id back to id.
func cycleString(chain []string, id string) string {
	for i, c := range chain {
		if c == id {
			return strings.Join(append(chain[i:], id), " -> ")
		}
	}
	return id
}
