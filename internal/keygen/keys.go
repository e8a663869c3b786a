package keygen

import (
	"strconv"
	"strings"
)

// NodeID identifies a tracked element. Ids are owned by the caller.
type NodeID = string

// Depth is the distance from the root level of the indexed tree; 0 is the root level.
type Depth = int

// SiblingKey identifies a lane of structural peers at one depth.
// It is formatted as "<depth>-<slot>".
type SiblingKey string

// BranchKey identifies one path traced through the tree during a pass.
// It is the decimal value of the branch counter when the branch started.
type BranchKey string

// NewSiblingKey synthesizes the key for a (depth, slot) pair.
func NewSiblingKey(depth Depth, slot int) SiblingKey {
	return SiblingKey(strconv.Itoa(depth) + "-" + strconv.Itoa(slot))
}

// Parse splits a sibling key back into its depth and slot.
// ok is false for keys not produced by NewSiblingKey.
func (k SiblingKey) Parse() (depth Depth, slot int, ok bool) {
	d, s, found := strings.Cut(string(k), "-")
	if !found {
		return 0, 0, false
	}
	depth, err := strconv.Atoi(d)
	if err != nil || depth < 0 {
		return 0, 0, false
	}
	slot, err = strconv.Atoi(s)
	if err != nil || slot < 0 {
		return 0, 0, false
	}
	return depth, slot, true
}

// Depth returns the depth encoded in the key, or -1 if the key is malformed.
func (k SiblingKey) Depth() Depth {
	d, _, ok := k.Parse()
	if !ok {
		return -1
	}
	return d
}

func newBranchKey(counter int) BranchKey {
	return BranchKey(strconv.Itoa(counter))
}

// BranchValue is a branch's record at one depth: the sibling lane occupying
// that depth and the id(s) representing the branch there.
type BranchValue struct {
	SiblingKey SiblingKey `json:"siblingKey" yaml:"siblingKey" toml:"sibling_key"`
	IDs        []NodeID   `json:"ids" yaml:"ids" toml:"ids"`
}

// Equal reports whether two values name the same lane and ids in the same order.
func (v BranchValue) Equal(o BranchValue) bool {
	if v.SiblingKey != o.SiblingKey || len(v.IDs) != len(o.IDs) {
		return false
	}
	for i := range v.IDs {
		if v.IDs[i] != o.IDs[i] {
			return false
		}
	}
	return true
}

func (v BranchValue) clone() BranchValue {
	return BranchValue{SiblingKey: v.SiblingKey, IDs: cloneIDs(v.IDs)}
}

func cloneIDs(ids []NodeID) []NodeID {
	if ids == nil {
		return nil
	}
	out := make([]NodeID, len(ids))
	copy(out, ids)
	return out
}

// BranchEntry pairs a depth with the branch value recorded there.
type BranchEntry struct {
	Depth Depth       `json:"depth" yaml:"depth" toml:"depth"`
	Value BranchValue `json:"value" yaml:"value" toml:"value"`
}
