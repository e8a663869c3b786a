package registry

import (
	"fmt"

	dkerrors "domkey/internal/errors"
	"domkey/internal/keygen"
)

// Mode selects how traversal contract violations are handled.
type Mode string

const (
	// ModeStrict rejects a violating Register call and leaves the pass untouched.
	ModeStrict Mode = "strict"
	// ModeLenient records the violation and registers the node anyway.
	ModeLenient Mode = "lenient"
)

// ParseMode converts a config or flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict, "":
		return ModeStrict, nil
	case ModeLenient:
		return ModeLenient, nil
	default:
		return "", fmt.Errorf("unknown validation mode %q (want strict or lenient)", s)
	}
}

// Violation describes one Register call that broke the traversal contract.
type Violation struct {
	Code     dkerrors.ErrorCode `json:"code" yaml:"code" toml:"code"`
	ID       keygen.NodeID      `json:"id" yaml:"id" toml:"id"`
	Depth    keygen.Depth       `json:"depth" yaml:"depth" toml:"depth"`
	Previous keygen.Depth       `json:"previous" yaml:"previous" toml:"previous"`
	Message  string             `json:"message" yaml:"message" toml:"message"`
}

// Err converts the violation into a typed error carrying it as details.
func (v Violation) Err() error {
	return dkerrors.New(v.Code, v.Message, nil).WithDetails(v)
}

// check inspects a Register call against the cursor state without mutating it.
// Structurally, a preceding sibling exists exactly when a frame is open at depth.
func (r *Registry) check(id keygen.NodeID, depth keygen.Depth, hasSibling bool) []Violation {
	var out []Violation
	add := func(code dkerrors.ErrorCode, format string, args ...interface{}) {
		out = append(out, Violation{
			Code:     code,
			ID:       id,
			Depth:    depth,
			Previous: r.prevDepth,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if _, dup := r.nodes[id]; dup {
		add(dkerrors.DuplicateNode, "node %q already registered in this pass", id)
	}

	if depth > r.prevDepth+1 {
		if r.prevDepth < 0 {
			add(dkerrors.DepthJump, "first node %q has depth %d, want 0", id, depth)
		} else {
			add(dkerrors.DepthJump, "node %q at depth %d follows depth %d", id, depth, r.prevDepth)
		}
		return out
	}

	open := r.openAt(depth)
	switch {
	case hasSibling && !open:
		add(dkerrors.SiblingMismatch, "node %q claims a sibling but nothing is open at depth %d", id, depth)
	case !hasSibling && open:
		add(dkerrors.SiblingMismatch, "node %q claims no sibling but follows %q at depth %d",
			id, r.stack[depth].value.IDs[len(r.stack[depth].value.IDs)-1], depth)
	}
	return out
}

func (r *Registry) openAt(depth keygen.Depth) bool {
	return depth < len(r.stack) && r.stack[depth].set
}
