package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		data, err := yaml.Marshal(resp)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *QueryResponseCLI:
		return formatQueryHuman(v), nil
	case *VerifyResponseCLI:
		return formatVerifyHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatQueryHuman(r *QueryResponseCLI) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s of %s (depth %d, lane %s, branch %s)\n",
		strings.ToUpper(r.Query[:1])+r.Query[1:], r.ID, r.Depth, r.SiblingKey, r.BranchKey))
	if len(r.IDs) == 0 {
		b.WriteString("  (none)")
		return b.String()
	}
	for i, id := range r.IDs {
		marker := " "
		if id == r.ID {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("  %s %d. %s", marker, i, id))
		if i < len(r.Elements) {
			b.WriteString(describeElement(r.Elements[i]))
		}
		if i < len(r.IDs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// describeElement renders the tag and capabilities shown after an id.
func describeElement(e QueryElementCLI) string {
	var b strings.Builder
	if e.Tag != "" {
		b.WriteString(" <" + e.Tag + ">")
	}
	b.WriteString(" [" + e.Kind)
	if e.Draggable {
		b.WriteString(", draggable")
	}
	if e.Container {
		b.WriteString(", container")
	}
	b.WriteString("]")
	return b.String()
}

func formatVerifyHuman(r *VerifyResponseCLI) string {
	status := "stable"
	if !r.Stable {
		status = "UNSTABLE"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s: %s (%d nodes", r.Path, status, r.Nodes))
	if r.Violations > 0 {
		b.WriteString(fmt.Sprintf(", %d violations", r.Violations))
	}
	b.WriteString(")\n")
	b.WriteString(fmt.Sprintf("  first:  %s\n", r.First))
	b.WriteString(fmt.Sprintf("  second: %s", r.Second))
	if r.StoredPass != "" {
		b.WriteString(fmt.Sprintf("\n  stored: %s (pass %s)", r.Stored, r.StoredPass))
	}
	return b.String()
}
