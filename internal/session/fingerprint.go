package session

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"domkey/internal/keygen"
)

// Fingerprint hashes the index of the current pass. Passes over identical
// input produce identical fingerprints; the pass id is not part of it.
func (s *Session) Fingerprint() string {
	return Fingerprint(s.registry.Keygen())
}

// Fingerprint hashes a canonical rendering of k's tiers, lanes and branches.
func Fingerprint(k *keygen.Keygen) string {
	var b strings.Builder
	for _, d := range k.Depths() {
		b.WriteString("tier:")
		b.WriteString(strconv.Itoa(d))
		for _, key := range k.Tier(d) {
			b.WriteString("|lane:")
			b.WriteString(string(key))
			b.WriteString("=")
			b.WriteString(strings.Join(k.Siblings(key), ","))
		}
		b.WriteString("\n")
	}
	for _, bk := range k.BranchKeys() {
		b.WriteString("branch:")
		b.WriteString(string(bk))
		for _, e := range k.Branch(bk) {
			b.WriteString("|")
			b.WriteString(strconv.Itoa(e.Depth))
			b.WriteString(":")
			b.WriteString(string(e.Value.SiblingKey))
			b.WriteString("=")
			b.WriteString(strings.Join(e.Value.IDs, ","))
		}
		b.WriteString("\n")
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
