//go:build cgo

package source

import (
	"context"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"

	"domkey/internal/domtree"
	dkerrors "domkey/internal/errors"
)

// HTMLAvailable reports whether HTML parsing is compiled in.
func HTMLAvailable() bool {
	return true
}

// ParseHTML parses an HTML document or Vue template with tree-sitter and
// returns its element tree. Elements without the id attribute get a
// positional id such as "html:0>body:1>div:0".
func ParseHTML(ctx context.Context, data []byte, opts Options) (*domtree.Tree, error) {
	if opts.IDAttribute == "" {
		opts.IDAttribute = "id"
	}
	parser := sitter.NewParser()
	parser.SetLanguage(html.GetLanguage())
	parsed, err := parser.ParseCtx(ctx, nil, data)
	if err != nil {
		return nil, dkerrors.New(dkerrors.ParseFailed, "parse error", err)
	}
	defer parsed.Close()

	b := &htmlBuilder{src: data, opts: opts}
	tree := domtree.NewTree()
	b.children(parsed.RootNode(), "", nil, func(e *domtree.Element) {
		tree.Roots = append(tree.Roots, e)
	})
	for _, r := range tree.Roots {
		prune(r, 0, opts.MaxDepth)
	}
	return tree, nil
}

type htmlBuilder struct {
	src  []byte
	opts Options
}

// children converts the element and text children of n, calling add for each.
func (b *htmlBuilder) children(n *sitter.Node, prefix string, parent *domtree.Element, add func(*domtree.Element)) {
	pos := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "element", "script_element", "style_element":
			add(b.element(c, prefix, pos, parent))
			pos++
		case "text":
			if b.opts.SkipText {
				continue
			}
			text := strings.TrimSpace(c.Content(b.src))
			if text == "" {
				continue
			}
			e := domtree.NewElement(joinPos(prefix, "#text", pos), domtree.KindBase, parent)
			e.Tag = "#text"
			add(e)
			pos++
		}
	}
}

func (b *htmlBuilder) element(n *sitter.Node, prefix string, pos int, parent *domtree.Element) *domtree.Element {
	tag, attrs := b.startTag(n)
	id := attrs[b.opts.IDAttribute]
	path := joinPos(prefix, tag, pos)
	if id == "" {
		id = path
	}

	e := &domtree.Element{ID: id, Tag: tag, Attrs: attrs, Parent: parent}
	if parent != nil {
		parent.Children = append(parent.Children, e)
	}
	b.children(n, path, e, func(*domtree.Element) {})

	e.Kind = domtree.KindBase
	if attrs["draggable"] == "true" {
		e.Kind = domtree.KindElement
		if len(e.Children) > 0 {
			e.Kind = domtree.KindNode
		}
	}
	return e
}

// startTag returns the tag name and attributes of an element node.
func (b *htmlBuilder) startTag(n *sitter.Node) (string, map[string]string) {
	attrs := make(map[string]string)
	tag := ""
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "start_tag" && c.Type() != "self_closing_tag" {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			part := c.NamedChild(j)
			switch part.Type() {
			case "tag_name":
				tag = strings.ToLower(part.Content(b.src))
			case "attribute":
				name, value := b.attribute(part)
				if name != "" {
					attrs[name] = value
				}
			}
		}
		break
	}
	return tag, attrs
}

func (b *htmlBuilder) attribute(n *sitter.Node) (string, string) {
	var name, value string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "attribute_name":
			name = c.Content(b.src)
		case "attribute_value":
			value = c.Content(b.src)
		case "quoted_attribute_value":
			value = strings.Trim(c.Content(b.src), `"'`)
		}
	}
	return name, value
}

func joinPos(prefix, tag string, pos int) string {
	seg := tag + ":" + strconv.Itoa(pos)
	if prefix == "" {
		return seg
	}
	return prefix + ">" + seg
}
