// Package source reads the inputs of an indexing pass: element trees from
// HTML/Vue templates or YAML/JSON documents, and raw visit traces from TOML.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"domkey/internal/domtree"
	dkerrors "domkey/internal/errors"
)

// Format identifies an input format.
type Format string

const (
	FormatHTML  Format = "html"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatTrace Format = "trace"
)

// Options controls how sources are turned into trees.
type Options struct {
	// IDAttribute names the HTML attribute holding element ids.
	IDAttribute string
	// SkipText drops HTML text nodes from the tree.
	SkipText bool
	// MaxDepth drops elements deeper than this; 0 means unlimited.
	MaxDepth int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{IDAttribute: "id", SkipText: true}
}

// Input is a loaded source: either a tree to walk or a trace to replay.
type Input struct {
	Path   string
	Format Format
	Tree   *domtree.Tree
	Trace  []TraceVisit
}

// Detect picks the input format from the file extension.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".vue":
		return FormatHTML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTrace, nil
	default:
		return "", dkerrors.Newf(dkerrors.UnsupportedSource, "no reader for %q", path)
	}
}

// Load reads and parses path.
func Load(ctx context.Context, path string, opts Options) (*Input, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dkerrors.New(dkerrors.ParseFailed, "cannot read "+path, err)
	}
	return Parse(ctx, format, data, opts)
}

// Parse parses data in the given format.
func Parse(ctx context.Context, format Format, data []byte, opts Options) (*Input, error) {
	in := &Input{Format: format}
	var err error
	switch format {
	case FormatHTML:
		in.Tree, err = ParseHTML(ctx, data, opts)
	case FormatYAML, FormatJSON:
		in.Tree, err = ParseDocument(data, opts)
	case FormatTrace:
		in.Trace, err = ParseTrace(data)
	default:
		err = dkerrors.Newf(dkerrors.UnsupportedSource, "unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

// prune drops elements below maxDepth.
func prune(e *domtree.Element, depth, maxDepth int) {
	if maxDepth <= 0 {
		return
	}
	if depth >= maxDepth {
		e.Children = nil
		return
	}
	for _, c := range e.Children {
		prune(c, depth+1, maxDepth)
	}
}
