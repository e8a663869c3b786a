package domtree

import (
	"context"

	dkerrors "domkey/internal/errors"
)

// Visit is what the walk reports for each element, in pre-order.
type Visit struct {
	Element    *Element
	ID         string
	Depth      int
	HasSibling bool
}

// Walk calls fn for every element in pre-order. HasSibling is true when
// the element's parent (or the forest, for roots) had an earlier child.
// Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(Visit) bool) {
	for i, root := range t.Roots {
		if !walk(root, 0, i > 0, fn) {
			return
		}
	}
}

func walk(e *Element, depth int, hasSibling bool, fn func(Visit) bool) bool {
	if !fn(Visit{Element: e, ID: e.ID, Depth: depth, HasSibling: hasSibling}) {
		return false
	}
	for i, c := range e.Children {
		if !walk(c, depth+1, i > 0, fn) {
			return false
		}
	}
	return true
}

// Registrar receives the visits of a pass.
type Registrar interface {
	Register(id string, depth int, hasSiblingInSameLevel bool) (int, error)
}

// Index walks t and registers every element with r. The walk stops at the
// first registration error or when ctx is done.
func Index(ctx context.Context, t *Tree, r Registrar) error {
	var err error
	t.Walk(func(v Visit) bool {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = dkerrors.New(dkerrors.PassCancelled, "indexing pass cancelled", ctxErr)
			return false
		}
		if _, err = r.Register(v.ID, v.Depth, v.HasSibling); err != nil {
			return false
		}
		return true
	})
	return err
}
