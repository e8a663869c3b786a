package source

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"domkey/internal/domtree"
	dkerrors "domkey/internal/errors"
)

func visitIDs(tree *domtree.Tree) []string {
	var ids []string
	tree.Walk(func(v domtree.Visit) bool {
		ids = append(ids, v.ID)
		return true
	})
	return ids
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"page.html", FormatHTML, false},
		{"Panel.vue", FormatHTML, false},
		{"tree.YAML", FormatYAML, false},
		{"tree.yml", FormatYAML, false},
		{"tree.json", FormatJSON, false},
		{"visits.toml", FormatTrace, false},
		{"notes.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Detect(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Detect(%q) error = %v", tt.path, err)
			}
			if tt.wantErr && !dkerrors.HasCode(err, dkerrors.UnsupportedSource) {
				t.Errorf("Detect(%q) error code = %s", tt.path, dkerrors.CodeOf(err))
			}
			if got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

const sampleYAML = `
id: root
kind: base
children:
  - id: A
    children:
      - id: a1
        kind: element
      - id: a2
        kind: element
  - id: B
    children:
      - id: b1
        kind: element
`

func TestParseDocument(t *testing.T) {
	tree, err := ParseDocument([]byte(sampleYAML), DefaultOptions())
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}

	want := []string{"root", "A", "a1", "a2", "B", "b1"}
	if got := visitIDs(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
	if tree.Roots[0].Kind != domtree.KindBase {
		t.Errorf("root kind = %v, want base", tree.Roots[0].Kind)
	}
	if tree.Roots[0].Children[0].Kind != domtree.KindNode {
		t.Errorf("default kind = %v, want node", tree.Roots[0].Children[0].Kind)
	}
}

func TestParseDocumentJSONForest(t *testing.T) {
	data := []byte(`[{"id": "r1", "children": [{}, {"id": "x"}]}, {"children": [{}]}]`)

	tree, err := ParseDocument(data, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}

	want := []string{"r1", "0/0", "x", "1", "1/0"}
	if got := visitIDs(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestParseDocumentMaxDepth(t *testing.T) {
	tree, err := ParseDocument([]byte(sampleYAML), Options{MaxDepth: 1})
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if got := visitIDs(tree); !reflect.DeepEqual(got, []string{"root", "A", "B"}) {
		t.Errorf("ids = %v, want [root A B]", got)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"scalar", "just a string"},
		{"bad kind", "id: x\nkind: widget\n"},
		{"bad yaml", "id: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.data), DefaultOptions())
			if !dkerrors.HasCode(err, dkerrors.ParseFailed) {
				t.Errorf("error = %v, want %s", err, dkerrors.ParseFailed)
			}
		})
	}
}

func TestParseDocumentEmpty(t *testing.T) {
	tree, err := ParseDocument(nil, DefaultOptions())
	if err != nil {
		t.Fatalf("ParseDocument(nil) error = %v", err)
	}
	if tree.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tree.Len())
	}
}

const sampleTrace = `
[[visit]]
id = "root"
depth = 0

[[visit]]
id = "A"
depth = 1

[[visit]]
id = "B"
depth = 1
sibling = true
`

func TestParseTrace(t *testing.T) {
	visits, err := ParseTrace([]byte(sampleTrace))
	if err != nil {
		t.Fatalf("ParseTrace() error = %v", err)
	}

	want := []TraceVisit{
		{ID: "root", Depth: 0},
		{ID: "A", Depth: 1},
		{ID: "B", Depth: 1, Sibling: true},
	}
	if !reflect.DeepEqual(visits, want) {
		t.Errorf("visits = %+v, want %+v", visits, want)
	}
}

func TestParseTraceErrors(t *testing.T) {
	for _, data := range []string{"[[visit]]\ndepth = 0\n", "[[visit]\n"} {
		if _, err := ParseTrace([]byte(data)); !dkerrors.HasCode(err, dkerrors.ParseFailed) {
			t.Errorf("ParseTrace(%q) error = %v, want %s", data, err, dkerrors.ParseFailed)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}

	in, err := Load(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if in.Format != FormatYAML || in.Tree == nil || in.Tree.Len() != 6 {
		t.Errorf("Load() = %+v", in)
	}

	if _, err := Load(context.Background(), filepath.Join(dir, "missing.yaml"), DefaultOptions()); !dkerrors.HasCode(err, dkerrors.ParseFailed) {
		t.Errorf("Load(missing) error = %v", err)
	}
}
