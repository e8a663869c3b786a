package registry

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	dkerrors "domkey/internal/errors"
	"domkey/internal/keygen"
	"domkey/internal/logging"
)

type visit struct {
	id      string
	depth   int
	sibling bool
}

// root -> A -> {a1, a2}, root -> B -> {b1}
var sharedParentTree = []visit{
	{"root", 0, false},
	{"A", 1, false},
	{"a1", 2, false},
	{"a2", 2, true},
	{"B", 1, true},
	{"b1", 2, false},
}

func registerAll(t *testing.T, r *Registry, visits []visit) []int {
	t.Helper()
	out := make([]int, 0, len(visits))
	for _, v := range visits {
		idx, err := r.Register(v.id, v.depth, v.sibling)
		if err != nil {
			t.Fatalf("Register(%q, %d, %v) error = %v", v.id, v.depth, v.sibling, err)
		}
		out = append(out, idx)
	}
	return out
}

func TestRegister_SelfIndex(t *testing.T) {
	r := New(Options{})
	got := registerAll(t, r, sharedParentTree)

	want := []int{0, 0, 0, 1, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
}

func TestRegister_Lanes(t *testing.T) {
	r := New(Options{})
	registerAll(t, r, sharedParentTree)

	tests := []struct {
		id       string
		wantKey  keygen.SiblingKey
		wantPeer []string
	}{
		{"root", "0-0", []string{"root"}},
		{"A", "1-0", []string{"A", "B"}},
		{"B", "1-0", []string{"A", "B"}},
		{"a1", "2-0", []string{"a1", "a2"}},
		{"a2", "2-0", []string{"a1", "a2"}},
		{"b1", "2-1", []string{"b1"}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n, ok := r.Node(tt.id)
			if !ok {
				t.Fatalf("Node(%q) not found", tt.id)
			}
			if n.SiblingKey != tt.wantKey {
				t.Errorf("SiblingKey = %q, want %q", n.SiblingKey, tt.wantKey)
			}
			if got := r.Siblings(tt.id); !reflect.DeepEqual(got, tt.wantPeer) {
				t.Errorf("Siblings = %v, want %v", got, tt.wantPeer)
			}
		})
	}

	if got := r.Keygen().Tier(2); !reflect.DeepEqual(got, []keygen.SiblingKey{"2-0", "2-1"}) {
		t.Errorf("Tier(2) = %v", got)
	}
}

func TestRegister_RoundTrip(t *testing.T) {
	r := New(Options{})
	for _, v := range sharedParentTree {
		idx, err := r.Register(v.id, v.depth, v.sibling)
		if err != nil {
			t.Fatalf("Register(%q) error = %v", v.id, err)
		}
		n, _ := r.Node(v.id)
		members := r.Keygen().Siblings(n.SiblingKey)
		if idx >= len(members) || members[idx] != v.id {
			t.Errorf("Siblings(%q)[%d] = %v, want %q", n.SiblingKey, idx, members, v.id)
		}
	}
}

func TestRegister_NewBranchTrigger(t *testing.T) {
	visits := []visit{
		{"n0", 0, false},
		{"n1", 1, false},
		{"n2", 2, false},
		{"n3", 1, true},
		{"n4", 2, false},
		{"n5", 3, false},
	}
	r := New(Options{})

	var started []int
	prev := r.currentBranch()
	for i, v := range visits {
		if _, err := r.Register(v.id, v.depth, v.sibling); err != nil {
			t.Fatalf("Register(%q) error = %v", v.id, err)
		}
		if r.currentBranch() != prev {
			started = append(started, i)
		}
		prev = r.currentBranch()
	}

	if !reflect.DeepEqual(started, []int{3}) {
		t.Errorf("new branches started at %v, want [3]", started)
	}
	if r.Keygen().Counter() != 2 {
		t.Errorf("Counter() = %d, want 2", r.Keygen().Counter())
	}
}

func TestRegister_AncestorSharing(t *testing.T) {
	r := New(Options{})
	registerAll(t, r, sharedParentTree)

	a1, _ := r.Node("a1")
	a2, _ := r.Node("a2")
	b1, _ := r.Node("b1")

	if a1.BranchKey != a2.BranchKey {
		t.Errorf("a1 and a2 should share a branch: %q vs %q", a1.BranchKey, a2.BranchKey)
	}
	if b1.BranchKey == a1.BranchKey {
		t.Fatalf("b1 should be on a new branch, got %q", b1.BranchKey)
	}

	kg := r.Keygen()
	rootA, okA := kg.BranchEntry(a1.BranchKey, 0)
	rootB, okB := kg.BranchEntry(b1.BranchKey, 0)
	if !okA || !okB {
		t.Fatalf("depth-0 entries missing: a=%v b=%v", okA, okB)
	}
	if !rootA.Equal(rootB) {
		t.Errorf("depth-0 entries differ: %+v vs %+v", rootA, rootB)
	}
	if rootB.SiblingKey != "0-0" || !reflect.DeepEqual(rootB.IDs, []string{"root"}) {
		t.Errorf("depth-0 entry = %+v, want 0-0 [root]", rootB)
	}

	if got := r.AncestorIDs("b1"); !reflect.DeepEqual(got, []string{"root", "B"}) {
		t.Errorf("AncestorIDs(b1) = %v, want [root B]", got)
	}
	if got := r.AncestorIDs("a1"); !reflect.DeepEqual(got, []string{"root", "A"}) {
		t.Errorf("AncestorIDs(a1) = %v, want [root A]", got)
	}

	d, v, ok := kg.HighestDepthEntry(b1.BranchKey)
	if !ok || d != 2 || v.IDs[0] != "b1" {
		t.Errorf("HighestDepthEntry(b1 branch) = (%d, %+v, %v)", d, v, ok)
	}
}

func TestRegister_DeepSharing(t *testing.T) {
	// root -> X -> Y -> {y1}, X -> Z
	visits := []visit{
		{"root", 0, false},
		{"X", 1, false},
		{"Y", 2, false},
		{"y1", 3, false},
		{"Z", 2, true},
	}
	r := New(Options{})
	registerAll(t, r, visits)

	if got := r.AncestorIDs("Z"); !reflect.DeepEqual(got, []string{"root", "X"}) {
		t.Errorf("AncestorIDs(Z) = %v, want [root X]", got)
	}
	z, _ := r.Node("Z")
	if n := len(r.Keygen().Branch(z.BranchKey)); n != 3 {
		t.Errorf("Z's branch has %d entries, want 3 (contiguous from root)", n)
	}
}

func TestRegister_RootLaneAccumulates(t *testing.T) {
	visits := []visit{
		{"r1", 0, false},
		{"c1", 1, false},
		{"r2", 0, true},
		{"r3", 0, true},
	}
	r := New(Options{})
	registerAll(t, r, visits)

	r2, _ := r.Node("r2")
	r3, _ := r.Node("r3")
	v2, _ := r.Keygen().BranchEntry(r2.BranchKey, 0)
	if !reflect.DeepEqual(v2.IDs, []string{"r1", "r2", "r3"}) {
		t.Errorf("root entry ids = %v, want [r1 r2 r3] (last write)", v2.IDs)
	}
	if r2.BranchKey != r3.BranchKey {
		t.Errorf("r3 continues r2's branch: %q vs %q", r2.BranchKey, r3.BranchKey)
	}

	c1, _ := r.Node("c1")
	v1, _ := r.Keygen().BranchEntry(c1.BranchKey, 0)
	if !reflect.DeepEqual(v1.IDs, []string{"r1"}) {
		t.Errorf("first branch root ids = %v, want [r1]", v1.IDs)
	}
}

func TestRegister_Deterministic(t *testing.T) {
	run := func() ([]int, map[string]Node) {
		r := New(Options{})
		idx := registerAll(t, r, sharedParentTree)
		nodes := make(map[string]Node)
		for _, v := range sharedParentTree {
			nodes[v.id], _ = r.Node(v.id)
		}
		return idx, nodes
	}

	idx1, nodes1 := run()
	idx2, nodes2 := run()
	if !reflect.DeepEqual(idx1, idx2) || !reflect.DeepEqual(nodes1, nodes2) {
		t.Error("identical sequences should produce identical indices and keys")
	}
}

func TestReset(t *testing.T) {
	r := New(Options{})
	first := r.currentBranch()
	if first != "1" {
		t.Errorf("first branch key = %q, want %q", first, "1")
	}

	before := registerAll(t, r, sharedParentTree)
	r.Reset()

	if r.Len() != 0 {
		t.Errorf("Len() after Reset = %d", r.Len())
	}
	if got := r.Siblings("a1"); len(got) != 0 {
		t.Errorf("Siblings after Reset = %v", got)
	}
	if got := r.Keygen().Siblings("2-0"); len(got) != 0 {
		t.Errorf("keygen Siblings after Reset = %v", got)
	}
	if _, _, ok := r.Keygen().HighestDepthEntry("2"); ok {
		t.Error("branches should be empty after Reset")
	}
	if r.currentBranch() != "1" {
		t.Errorf("branch key after Reset = %q, want %q", r.currentBranch(), "1")
	}

	after := registerAll(t, r, sharedParentTree)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("indices after Reset = %v, want %v", after, before)
	}
}

func TestDestroy(t *testing.T) {
	r := New(Options{})
	registerAll(t, r, sharedParentTree[:2])

	r.Destroy()

	if r.Keygen().Counter() != 0 {
		t.Errorf("Counter() after Destroy = %d, want 0", r.Keygen().Counter())
	}
	_, err := r.Register("x", 0, false)
	if !dkerrors.HasCode(err, dkerrors.RegistryDestroyed) {
		t.Errorf("Register after Destroy error = %v, want %s", err, dkerrors.RegistryDestroyed)
	}

	r.Reset()
	if _, err := r.Register("x", 0, false); err != nil {
		t.Errorf("Register after Reset error = %v", err)
	}
}

func TestUnknownQueries(t *testing.T) {
	r := New(Options{})

	if _, ok := r.Node("ghost"); ok {
		t.Error("Node(ghost) should report absence")
	}
	if got := r.Siblings("ghost"); got == nil || len(got) != 0 {
		t.Errorf("Siblings(ghost) = %#v, want empty slice", got)
	}
	if got := r.Ancestors("ghost"); len(got) != 0 {
		t.Errorf("Ancestors(ghost) = %v, want empty", got)
	}
}

func TestStrictViolations(t *testing.T) {
	tests := []struct {
		name   string
		setup  []visit
		next   visit
		wantCd dkerrors.ErrorCode
	}{
		{"negative depth", nil, visit{"x", -1, false}, dkerrors.InvalidDepth},
		{"first node not at root", nil, visit{"x", 1, false}, dkerrors.DepthJump},
		{"skips a level", sharedParentTree[:1], visit{"x", 2, false}, dkerrors.DepthJump},
		{"sibling claimed for first child", sharedParentTree[:2], visit{"x", 2, true}, dkerrors.SiblingMismatch},
		{"sibling denied after sibling", sharedParentTree[:3], visit{"x", 2, false}, dkerrors.SiblingMismatch},
		{"duplicate id", sharedParentTree[:3], visit{"a1", 2, true}, dkerrors.DuplicateNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Options{Mode: ModeStrict})
			registerAll(t, r, tt.setup)
			branch := r.currentBranch()
			stats := r.Keygen().Stats()

			_, err := r.Register(tt.next.id, tt.next.depth, tt.next.sibling)
			if !dkerrors.HasCode(err, tt.wantCd) {
				t.Fatalf("error = %v, want code %s", err, tt.wantCd)
			}
			if r.currentBranch() != branch || r.Keygen().Stats() != stats || r.Len() != len(tt.setup) {
				t.Error("strict rejection should leave the pass untouched")
			}
		})
	}
}

func TestLenientViolations(t *testing.T) {
	var buf bytes.Buffer
	r := New(Options{
		Mode:   ModeLenient,
		Logger: logging.NewLogger(logging.Config{Level: "warn", Output: &buf}),
	})

	// B wrongly denies having a sibling: the new branch gets no shared ancestors.
	visits := []visit{
		{"root", 0, false},
		{"A", 1, false},
		{"a1", 2, false},
		{"B", 1, false},
		{"b1", 2, false},
	}
	for _, v := range visits {
		if _, err := r.Register(v.id, v.depth, v.sibling); err != nil {
			t.Fatalf("lenient Register(%q) error = %v", v.id, err)
		}
	}

	vs := r.Violations()
	if len(vs) != 1 || vs[0].Code != dkerrors.SiblingMismatch || vs[0].ID != "B" {
		t.Fatalf("Violations() = %+v, want one SIBLING_MISMATCH for B", vs)
	}
	if !strings.Contains(buf.String(), "SIBLING_MISMATCH") {
		t.Errorf("violation should be logged, got: %s", buf.String())
	}

	b, _ := r.Node("B")
	if b.SiblingKey != "1-1" {
		t.Errorf("B's lane = %q, want new lane 1-1", b.SiblingKey)
	}
	if got := r.AncestorIDs("b1"); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("AncestorIDs(b1) = %v, want [B] (no shared root)", got)
	}
}

func TestLenientDepthJump(t *testing.T) {
	r := New(Options{Mode: ModeLenient})
	visits := []visit{
		{"root", 0, false},
		{"deep", 2, false},
		{"deeper", 3, false},
	}
	for _, v := range visits {
		if _, err := r.Register(v.id, v.depth, v.sibling); err != nil {
			t.Fatalf("Register(%q) error = %v", v.id, err)
		}
	}

	if len(r.Violations()) != 1 {
		t.Errorf("Violations() = %+v, want one DEPTH_JUMP", r.Violations())
	}
	if got := r.AncestorIDs("deeper"); !reflect.DeepEqual(got, []string{"root", "deep"}) {
		t.Errorf("AncestorIDs(deeper) = %v, want [root deep]", got)
	}
}

func TestLenientDuplicate(t *testing.T) {
	r := New(Options{Mode: ModeLenient})
	registerAll(t, r, sharedParentTree[:3])

	idx, err := r.Register("a1", 2, true)
	if err != nil {
		t.Fatalf("Register duplicate error = %v", err)
	}
	if idx != 1 {
		t.Errorf("duplicate index = %d, want 1 (appended again)", idx)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3 distinct ids", r.Len())
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeStrict, false},
		{"strict", ModeStrict, false},
		{"lenient", ModeLenient, false},
		{"loose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
