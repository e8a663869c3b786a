// Package registry turns a document-order tree walk into keygen records.
//
// The caller visits nodes in pre-order and calls Register once per node with
// its depth and whether a preceding sibling (same parent) was already
// registered. The Registry decides lane and branch boundaries and copies
// shared ancestors into every new branch, so that sibling groups and
// ancestor chains can be answered without walking the tree again.
//
// A Registry is single-writer: calls must arrive in traversal order and must
// not overlap. Independent passes use independent Registry values.
package registry

import (
	"log/slog"

	dkerrors "domkey/internal/errors"
	"domkey/internal/keygen"
	"domkey/internal/logging"
)

// Node is what a pass knows about one registered id.
type Node struct {
	ID         keygen.NodeID     `json:"id" yaml:"id" toml:"id"`
	Depth      keygen.Depth      `json:"depth" yaml:"depth" toml:"depth"`
	SiblingKey keygen.SiblingKey `json:"siblingKey" yaml:"siblingKey" toml:"sibling_key"`
	BranchKey  keygen.BranchKey  `json:"branchKey" yaml:"branchKey" toml:"branch_key"`
	Index      int               `json:"index" yaml:"index" toml:"index"`
}

// Options configures a Registry.
type Options struct {
	Mode   Mode
	Logger *slog.Logger
}

// frame is the open record at one depth of the path currently being traced.
type frame struct {
	set   bool
	value keygen.BranchValue
}

// Registry drives a Keygen through one indexing pass.
type Registry struct {
	kg     *keygen.Keygen
	mode   Mode
	logger *slog.Logger

	prevDepth  keygen.Depth
	prevBranch keygen.BranchKey
	stack      []frame

	nodes      map[keygen.NodeID]Node
	order      []keygen.NodeID
	violations []Violation
	destroyed  bool
}

// New returns a Registry ready for its first Register call.
func New(opts Options) *Registry {
	if opts.Mode == "" {
		opts.Mode = ModeStrict
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscardLogger()
	}
	r := &Registry{
		kg:     keygen.New(),
		mode:   opts.Mode,
		logger: opts.Logger,
	}
	r.init()
	return r
}

func (r *Registry) init() {
	r.prevDepth = -1
	r.prevBranch = r.kg.BranchKey(true)
	r.stack = r.stack[:0]
	r.nodes = make(map[keygen.NodeID]Node)
	r.order = nil
	r.violations = nil
}

// Register indexes id at depth and returns its position within its sibling lane.
func (r *Registry) Register(id keygen.NodeID, depth keygen.Depth, hasSiblingInSameLevel bool) (int, error) {
	if r.destroyed {
		return -1, dkerrors.Newf(dkerrors.RegistryDestroyed, "cannot register %q: pass destroyed", id)
	}
	if depth < 0 {
		return -1, dkerrors.Newf(dkerrors.InvalidDepth, "node %q has negative depth %d", id, depth)
	}

	if vs := r.check(id, depth, hasSiblingInSameLevel); len(vs) > 0 {
		if r.mode == ModeStrict {
			return -1, vs[0].Err()
		}
		for _, v := range vs {
			r.logger.Warn("Traversal contract violation",
				"code", string(v.Code),
				"id", v.ID,
				"depth", v.Depth,
				"previous", v.Previous,
			)
		}
		r.violations = append(r.violations, vs...)
	}

	key := r.lane(depth, hasSiblingInSameLevel)
	index := r.kg.RegisterSibling(key, id)

	isNewBranch := depth < r.prevDepth
	bk := r.kg.BranchKey(isNewBranch)

	ids := []keygen.NodeID{id}
	if depth == 0 {
		ids = r.kg.Siblings(key)
	}
	value := r.kg.RecordBranchValue(bk, key, depth, ids)

	if isNewBranch {
		r.logger.Debug("Branch started",
			"branch", string(bk),
			"id", id,
			"depth", depth,
			"previousBranch", string(r.prevBranch),
		)
		if hasSiblingInSameLevel {
			r.shareAncestors(bk, depth)
		}
	}

	r.push(depth, value)

	if _, seen := r.nodes[id]; !seen {
		r.order = append(r.order, id)
	}
	r.nodes[id] = Node{ID: id, Depth: depth, SiblingKey: key, BranchKey: bk, Index: index}
	r.prevDepth = depth
	r.prevBranch = bk
	return index, nil
}

// lane picks the sibling key for a node: the lane of its preceding sibling
// when one is open, otherwise the next unused slot at depth.
func (r *Registry) lane(depth keygen.Depth, hasSibling bool) keygen.SiblingKey {
	if hasSibling && r.openAt(depth) {
		return r.stack[depth].value.SiblingKey
	}
	return keygen.NewSiblingKey(depth, r.kg.TierSize(depth))
}

// shareAncestors copies the open frames above depth into branch bk. These
// frames are the ancestors the new branch has in common with the branch
// that just ended.
func (r *Registry) shareAncestors(bk keygen.BranchKey, depth keygen.Depth) {
	for d := 0; d < depth && d < len(r.stack); d++ {
		f := r.stack[d]
		if !f.set {
			continue
		}
		r.kg.RecordBranchValue(bk, f.value.SiblingKey, d, f.value.IDs)
	}
}

func (r *Registry) push(depth keygen.Depth, v keygen.BranchValue) {
	if len(r.stack) > depth {
		r.stack = r.stack[:depth]
	}
	for len(r.stack) < depth {
		r.stack = append(r.stack, frame{})
	}
	r.stack = append(r.stack, frame{set: true, value: v})
}

// Keygen exposes the underlying key store for read-only queries.
func (r *Registry) Keygen() *keygen.Keygen {
	return r.kg
}

// Mode returns the validation mode.
func (r *Registry) Mode() Mode {
	return r.mode
}

// Len returns the number of distinct ids registered in this pass.
func (r *Registry) Len() int {
	return len(r.order)
}

// Order returns registered ids in registration order.
func (r *Registry) Order() []keygen.NodeID {
	out := make([]keygen.NodeID, len(r.order))
	copy(out, r.order)
	return out
}

// Violations returns the contract violations recorded in lenient mode.
func (r *Registry) Violations() []Violation {
	out := make([]Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// currentBranch returns the branch key of the most recent registration,
// or the initial key before any node was registered.
func (r *Registry) currentBranch() keygen.BranchKey {
	return r.prevBranch
}

// Node returns the record of id.
func (r *Registry) Node(id keygen.NodeID) (Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Siblings returns the members of id's lane, id included.
// An unknown id yields an empty slice.
func (r *Registry) Siblings(id keygen.NodeID) []keygen.NodeID {
	n, ok := r.nodes[id]
	if !ok {
		return []keygen.NodeID{}
	}
	return r.kg.Siblings(n.SiblingKey)
}

// Ancestors returns the entries of id's branch above id's depth, root first.
// Entries a branch never received (lenient passes) are absent.
func (r *Registry) Ancestors(id keygen.NodeID) []keygen.BranchEntry {
	n, ok := r.nodes[id]
	if !ok {
		return []keygen.BranchEntry{}
	}
	entries := r.kg.Branch(n.BranchKey)
	out := entries[:0]
	for _, e := range entries {
		if e.Depth < n.Depth {
			out = append(out, e)
		}
	}
	return out
}

// AncestorIDs returns the ids on the path from the root down to id's parent.
// At depth 0 a branch value lists every root seen so far; the last one is
// the ancestor.
func (r *Registry) AncestorIDs(id keygen.NodeID) []keygen.NodeID {
	entries := r.Ancestors(id)
	out := make([]keygen.NodeID, 0, len(entries))
	for _, e := range entries {
		if len(e.Value.IDs) == 0 {
			continue
		}
		out = append(out, e.Value.IDs[len(e.Value.IDs)-1])
	}
	return out
}

// Reset abandons the current pass and starts a fresh one.
func (r *Registry) Reset() {
	r.kg.Reset()
	r.destroyed = false
	r.init()
}

// Destroy clears the pass. Further Register calls fail until Reset.
func (r *Registry) Destroy() {
	r.kg.Reset()
	r.stack = nil
	r.nodes = make(map[keygen.NodeID]Node)
	r.order = nil
	r.violations = nil
	r.prevDepth = -1
	r.prevBranch = ""
	r.destroyed = true
}
