// Package keygen stores the keys produced by an indexing pass: the sibling
// lanes seen at each depth, the members of every lane, and the per-depth
// record of every branch.
//
// A Keygen has no notion of traversal order; the registry package drives it.
// Lookups of unknown keys return empty results rather than errors.
// A Keygen is not safe for concurrent use.
package keygen

import "sort"

// Keygen owns every container of one pass.
type Keygen struct {
	tiers    map[Depth][]SiblingKey
	inTier   map[SiblingKey]struct{}
	members  map[SiblingKey][]NodeID
	branches map[BranchKey]map[Depth]BranchValue
	counter  int
}

// Stats summarizes the size of a Keygen.
type Stats struct {
	Depths   int `json:"depths" yaml:"depths" toml:"depths"`
	Lanes    int `json:"lanes" yaml:"lanes" toml:"lanes"`
	Members  int `json:"members" yaml:"members" toml:"members"`
	Branches int `json:"branches" yaml:"branches" toml:"branches"`
	Counter  int `json:"counter" yaml:"counter" toml:"counter"`
}

// New returns an empty Keygen with the branch counter at zero.
func New() *Keygen {
	k := &Keygen{}
	k.Reset()
	return k
}

// Reset clears every map and sets the branch counter back to zero.
func (k *Keygen) Reset() {
	k.tiers = make(map[Depth][]SiblingKey)
	k.inTier = make(map[SiblingKey]struct{})
	k.members = make(map[SiblingKey][]NodeID)
	k.branches = make(map[BranchKey]map[Depth]BranchValue)
	k.counter = 0
}

// BranchKey returns the key for the current branch counter, incrementing
// the counter first when fresh is true.
func (k *Keygen) BranchKey(fresh bool) BranchKey {
	if fresh {
		k.counter++
	}
	return newBranchKey(k.counter)
}

// Counter returns the current branch counter.
func (k *Keygen) Counter() int {
	return k.counter
}

// addTier records key under depth. It reports whether the key was new.
func (k *Keygen) addTier(depth Depth, key SiblingKey) bool {
	if _, ok := k.inTier[key]; ok {
		return false
	}
	k.inTier[key] = struct{}{}
	k.tiers[depth] = append(k.tiers[depth], key)
	return true
}

// TierSize returns the number of distinct sibling keys registered at depth.
func (k *Keygen) TierSize(depth Depth) int {
	return len(k.tiers[depth])
}

// Tier returns the sibling keys registered at depth in first-appearance order.
func (k *Keygen) Tier(depth Depth) []SiblingKey {
	keys := k.tiers[depth]
	out := make([]SiblingKey, len(keys))
	copy(out, keys)
	return out
}

// Depths returns every depth with at least one sibling key, ascending.
func (k *Keygen) Depths() []Depth {
	out := make([]Depth, 0, len(k.tiers))
	for d := range k.tiers {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// RegisterSibling appends id to the members of key and returns its
// zero-based position. It does not check for existing membership; the
// key is added to its depth's tier if it is not there yet.
func (k *Keygen) RegisterSibling(key SiblingKey, id NodeID) int {
	if d := key.Depth(); d >= 0 {
		k.addTier(d, key)
	}
	k.members[key] = append(k.members[key], id)
	return len(k.members[key]) - 1
}

// Siblings returns a copy of the members of key in registration order.
// Unknown keys yield an empty slice.
func (k *Keygen) Siblings(key SiblingKey) []NodeID {
	ids := k.members[key]
	out := make([]NodeID, len(ids))
	copy(out, ids)
	return out
}

// RecordBranchValue sets the value of branch bk at depth, replacing any
// previous value there. The ids are copied.
func (k *Keygen) RecordBranchValue(bk BranchKey, key SiblingKey, depth Depth, ids []NodeID) BranchValue {
	entries, ok := k.branches[bk]
	if !ok {
		entries = make(map[Depth]BranchValue)
		k.branches[bk] = entries
	}
	v := BranchValue{SiblingKey: key, IDs: cloneIDs(ids)}
	entries[depth] = v
	return v.clone()
}

// BranchEntry returns the value of branch bk at depth.
func (k *Keygen) BranchEntry(bk BranchKey, depth Depth) (BranchValue, bool) {
	v, ok := k.branches[bk][depth]
	if !ok {
		return BranchValue{}, false
	}
	return v.clone(), true
}

// HighestDepthEntry returns the deepest recorded entry of branch bk.
// ok is false when the branch is unknown.
// For strict-mode passes the deepest depth equals len(Branch(bk))-1, since a
// branch records every depth from 0 down without gaps.
func (k *Keygen) HighestDepthEntry(bk BranchKey) (Depth, BranchValue, bool) {
	entries, ok := k.branches[bk]
	if !ok || len(entries) == 0 {
		return 0, BranchValue{}, false
	}
	deepest := -1
	for d := range entries {
		if d > deepest {
			deepest = d
		}
	}
	return deepest, entries[deepest].clone(), true
}

// Branch returns the entries of branch bk ordered by depth.
// Depths may skip levels the branch never recorded.
func (k *Keygen) Branch(bk BranchKey) []BranchEntry {
	entries := k.branches[bk]
	out := make([]BranchEntry, 0, len(entries))
	for d, v := range entries {
		out = append(out, BranchEntry{Depth: d, Value: v.clone()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}

// BranchKeys returns every known branch key in counter order.
func (k *Keygen) BranchKeys() []BranchKey {
	out := make([]BranchKey, 0, len(k.branches))
	for bk := range k.branches {
		out = append(out, bk)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// BranchCount returns the number of branches with at least one entry.
func (k *Keygen) BranchCount() int {
	return len(k.branches)
}

// Stats returns a size summary.
func (k *Keygen) Stats() Stats {
	members := 0
	for _, ids := range k.members {
		members += len(ids)
	}
	return Stats{
		Depths:   len(k.tiers),
		Lanes:    len(k.inTier),
		Members:  members,
		Branches: len(k.branches),
		Counter:  k.counter,
	}
}
