//go:build !cgo

package source

import (
	"context"

	"domkey/internal/domtree"
	dkerrors "domkey/internal/errors"
)

// HTMLAvailable reports whether HTML parsing is compiled in.
// Returns false when CGO is disabled.
func HTMLAvailable() bool {
	return false
}

// ParseHTML is unavailable without cgo.
func ParseHTML(ctx context.Context, data []byte, opts Options) (*domtree.Tree, error) {
	return nil, dkerrors.Newf(dkerrors.ParserUnavailable, "HTML parsing requires CGO (tree-sitter)")
}
