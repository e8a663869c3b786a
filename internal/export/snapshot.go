// Package export renders the index of a finished pass for inspection.
// Snapshots are write-only: nothing reads them back into a pass.
package export

import (
	"domkey/internal/keygen"
	"domkey/internal/registry"
	"domkey/internal/session"
)

// Lane is one sibling group.
type Lane struct {
	Key     keygen.SiblingKey `json:"key" yaml:"key" toml:"key"`
	Members []keygen.NodeID   `json:"members" yaml:"members" toml:"members"`
}

// Tier is every lane at one depth, in first-appearance order.
type Tier struct {
	Depth keygen.Depth `json:"depth" yaml:"depth" toml:"depth"`
	Lanes []Lane       `json:"lanes" yaml:"lanes" toml:"lanes"`
}

// Branch is the depth-ordered record of one branch.
type Branch struct {
	Key     keygen.BranchKey     `json:"key" yaml:"key" toml:"key"`
	Entries []keygen.BranchEntry `json:"entries" yaml:"entries" toml:"entries"`
}

// Snapshot is a complete, self-contained copy of a pass index.
type Snapshot struct {
	PassID      string               `json:"passId,omitempty" yaml:"passId,omitempty" toml:"pass_id,omitempty"`
	Mode        registry.Mode        `json:"mode" yaml:"mode" toml:"mode"`
	Fingerprint string               `json:"fingerprint" yaml:"fingerprint" toml:"fingerprint"`
	Stats       keygen.Stats         `json:"stats" yaml:"stats" toml:"stats"`
	Tiers       []Tier               `json:"tiers" yaml:"tiers" toml:"tiers"`
	Branches    []Branch             `json:"branches" yaml:"branches" toml:"branches"`
	Nodes       []registry.Node      `json:"nodes" yaml:"nodes" toml:"nodes"`
	Violations  []registry.Violation `json:"violations,omitempty" yaml:"violations,omitempty" toml:"violations,omitempty"`
}

// FromSession snapshots the current pass of s.
func FromSession(s *session.Session) *Snapshot {
	snap := Build(s.Registry())
	snap.PassID = s.PassID()
	return snap
}

// Build snapshots r. Nodes are listed in registration order.
func Build(r *registry.Registry) *Snapshot {
	kg := r.Keygen()
	snap := &Snapshot{
		Mode:        r.Mode(),
		Fingerprint: session.Fingerprint(kg),
		Stats:       kg.Stats(),
		Tiers:       []Tier{},
		Branches:    []Branch{},
		Nodes:       []registry.Node{},
		Violations:  r.Violations(),
	}

	for _, d := range kg.Depths() {
		tier := Tier{Depth: d}
		for _, key := range kg.Tier(d) {
			tier.Lanes = append(tier.Lanes, Lane{Key: key, Members: kg.Siblings(key)})
		}
		snap.Tiers = append(snap.Tiers, tier)
	}

	for _, bk := range kg.BranchKeys() {
		snap.Branches = append(snap.Branches, Branch{Key: bk, Entries: kg.Branch(bk)})
	}

	for _, id := range r.Order() {
		if n, ok := r.Node(id); ok {
			snap.Nodes = append(snap.Nodes, n)
		}
	}
	return snap
}
