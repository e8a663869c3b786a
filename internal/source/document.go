package source

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"domkey/internal/domtree"
	dkerrors "domkey/internal/errors"
)

// docNode is one element of a YAML or JSON tree document.
type docNode struct {
	ID       string            `yaml:"id"`
	Kind     string            `yaml:"kind"`
	Tag      string            `yaml:"tag"`
	Attrs    map[string]string `yaml:"attrs"`
	Children []docNode         `yaml:"children"`
}

// ParseDocument parses a YAML (or JSON) tree document. The top level is
// either one element or a sequence of root elements. Elements without an
// id get a positional one ("0/1/2").
func ParseDocument(data []byte, opts Options) (*domtree.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, dkerrors.New(dkerrors.ParseFailed, "invalid tree document", err)
	}
	top := &doc
	if top.Kind == 0 {
		return domtree.NewTree(), nil
	}
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return domtree.NewTree(), nil
		}
		top = top.Content[0]
	}

	var roots []docNode
	switch top.Kind {
	case yaml.SequenceNode:
		if err := top.Decode(&roots); err != nil {
			return nil, dkerrors.New(dkerrors.ParseFailed, "invalid tree document", err)
		}
	case yaml.MappingNode:
		var root docNode
		if err := top.Decode(&root); err != nil {
			return nil, dkerrors.New(dkerrors.ParseFailed, "invalid tree document", err)
		}
		roots = []docNode{root}
	default:
		return nil, dkerrors.Newf(dkerrors.ParseFailed, "tree document must be a mapping or a sequence (line %d)", top.Line)
	}

	tree := domtree.NewTree()
	for i, r := range roots {
		e, err := buildElement(r, strconv.Itoa(i), nil)
		if err != nil {
			return nil, err
		}
		prune(e, 0, opts.MaxDepth)
		tree.Roots = append(tree.Roots, e)
	}
	return tree, nil
}

func buildElement(n docNode, pos string, parent *domtree.Element) (*domtree.Element, error) {
	kind, err := domtree.ParseKind(n.Kind)
	if err != nil {
		return nil, dkerrors.New(dkerrors.ParseFailed, "invalid element "+pos, err)
	}
	id := n.ID
	if id == "" {
		id = pos
	}
	e := domtree.NewElement(id, kind, parent)
	e.Tag = n.Tag
	e.Attrs = n.Attrs
	for i, c := range n.Children {
		if _, err := buildElement(c, pos+"/"+strconv.Itoa(i), e); err != nil {
			return nil, err
		}
	}
	return e, nil
}
