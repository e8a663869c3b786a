// Package domtree models the element tree an indexing pass walks.
package domtree

import (
	"fmt"
	"strings"
)

// Kind tags what an element is and therefore what it can do.
type Kind int

const (
	// KindBase is a plain tracked element with no drag capability.
	KindBase Kind = iota
	// KindElement is a draggable leaf element.
	KindElement
	// KindNode is a draggable element that can also hold children.
	KindNode
)

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindElement:
		return "element"
	case KindNode:
		return "node"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a kind name. The empty string is KindNode.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "base":
		return KindBase, nil
	case "element":
		return KindElement, nil
	case "node", "":
		return KindNode, nil
	default:
		return 0, fmt.Errorf("unknown element kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	kk, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = kk
	return nil
}

// Draggable reports whether elements of this kind can be picked up.
func (k Kind) Draggable() bool {
	return k == KindElement || k == KindNode
}

// Container reports whether elements of this kind may have children.
func (k Kind) Container() bool {
	return k == KindBase || k == KindNode
}

// Element is one node of the tree.
type Element struct {
	ID       string
	Kind     Kind
	Tag      string
	Attrs    map[string]string
	Parent   *Element
	Children []*Element
}

// NewElement creates an element and appends it to parent's children when
// parent is non-nil.
func NewElement(id string, kind Kind, parent *Element) *Element {
	e := &Element{ID: id, Kind: kind}
	if parent != nil {
		parent.Append(e)
	}
	return e
}

// Append adds child as the last child of e.
func (e *Element) Append(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// Depth returns the number of ancestors of e.
func (e *Element) Depth() int {
	d := 0
	for p := e.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Tree is a forest of root elements.
type Tree struct {
	Roots []*Element
}

// NewTree creates a tree from its roots.
func NewTree(roots ...*Element) *Tree {
	return &Tree{Roots: roots}
}

// Len returns the number of elements in the tree.
func (t *Tree) Len() int {
	n := 0
	t.Walk(func(Visit) bool {
		n++
		return true
	})
	return n
}
