package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	dkerrors "domkey/internal/errors"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatHuman, FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "":
		return FormatHuman, nil
	default:
		return "", dkerrors.Newf(dkerrors.ExportFailed, "unsupported format: %s", s)
	}
}

// Encode writes snap to w in the given format.
func Encode(w io.Writer, snap *Snapshot, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(snap); err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(snap)
	case FormatHuman:
		_, err = io.WriteString(w, Human(snap))
	default:
		return dkerrors.Newf(dkerrors.ExportFailed, "unsupported format: %s", format)
	}
	if err != nil {
		return dkerrors.New(dkerrors.ExportFailed, "failed to encode snapshot as "+string(format), err)
	}
	return nil
}

// Human renders snap as indented text.
func Human(snap *Snapshot) string {
	var b strings.Builder

	if snap.PassID != "" {
		b.WriteString(fmt.Sprintf("Pass %s (%s)\n", snap.PassID, snap.Mode))
	} else {
		b.WriteString(fmt.Sprintf("Pass (%s)\n", snap.Mode))
	}
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString(fmt.Sprintf("Nodes: %d  Lanes: %d  Branches: %d\n",
		len(snap.Nodes), snap.Stats.Lanes, snap.Stats.Branches))
	b.WriteString(fmt.Sprintf("Fingerprint: %s\n\n", snap.Fingerprint))

	b.WriteString("Lanes:\n")
	for _, t := range snap.Tiers {
		b.WriteString(fmt.Sprintf("  depth %d\n", t.Depth))
		for _, l := range t.Lanes {
			b.WriteString(fmt.Sprintf("    %-8s %s\n", l.Key, strings.Join(l.Members, ", ")))
		}
	}

	b.WriteString("\nBranches:\n")
	for _, br := range snap.Branches {
		parts := make([]string, 0, len(br.Entries))
		for _, e := range br.Entries {
			parts = append(parts, fmt.Sprintf("%d:%s[%s]", e.Depth, e.Value.SiblingKey, strings.Join(e.Value.IDs, ",")))
		}
		b.WriteString(fmt.Sprintf("  %-4s %s\n", br.Key, strings.Join(parts, " > ")))
	}

	if len(snap.Violations) > 0 {
		b.WriteString(fmt.Sprintf("\nViolations (%d):\n", len(snap.Violations)))
		for _, v := range snap.Violations {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", v.Code, v.Message))
		}
	}
	return b.String()
}
