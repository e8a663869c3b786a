package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queryFormat string

var siblingsCmd = &cobra.Command{
	Use:   "siblings <file> <id>",
	Short: "List the sibling group of an element",
	Long: `Indexes the file and prints the lane the element belongs to: every element
it can be reordered among, itself included, in document order.`,
	Args: cobra.ExactArgs(2),
	RunE: runSiblings,
}

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <file> <id>",
	Short: "List the ancestor chain of an element",
	Long:  `Indexes the file and prints the ids from the root down to the element's parent.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runAncestors,
}

func init() {
	for _, c := range []*cobra.Command{siblingsCmd, ancestorsCmd} {
		c.Flags().StringVar(&queryFormat, "format", "human", "Output format (human, json, yaml)")
		rootCmd.AddCommand(c)
	}
}

// QueryResponseCLI is the result of a siblings or ancestors query.
type QueryResponseCLI struct {
	Query      string            `json:"query" yaml:"query"`
	ID         string            `json:"id" yaml:"id"`
	Depth      int               `json:"depth" yaml:"depth"`
	SiblingKey string            `json:"siblingKey" yaml:"siblingKey"`
	BranchKey  string            `json:"branchKey" yaml:"branchKey"`
	IDs        []string          `json:"ids" yaml:"ids"`
	// Elements describes IDs in the same order. It is empty for traces,
	// which carry no elements.
	Elements   []QueryElementCLI `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// QueryElementCLI describes one element of a query result.
type QueryElementCLI struct {
	ID        string `json:"id" yaml:"id"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Kind      string `json:"kind" yaml:"kind"`
	Draggable bool   `json:"draggable" yaml:"draggable"`
	Container bool   `json:"container" yaml:"container"`
}

func runSiblings(cmd *cobra.Command, args []string) error {
	return runQuery(cmd, "siblings", args[0], args[1])
}

func runAncestors(cmd *cobra.Command, args []string) error {
	return runQuery(cmd, "ancestors", args[0], args[1])
}

func runQuery(cmd *cobra.Command, query, path, id string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	ctx, cancel := newContext()
	defer cancel()

	s, _, err := runPass(ctx, rt, path)
	if err != nil {
		return err
	}
	defer s.End()

	var ids []string
	if query == "siblings" {
		ids, err = s.Siblings(id)
	} else {
		ids, err = s.Ancestors(id)
	}
	if err != nil {
		return err
	}

	n, _ := s.Registry().Node(id)
	resp := &QueryResponseCLI{
		Query:      query,
		ID:         id,
		Depth:      n.Depth,
		SiblingKey: string(n.SiblingKey),
		BranchKey:  string(n.BranchKey),
		IDs:        ids,
	}
	if s.Elements().Len() > 0 {
		for _, eid := range ids {
			e, err := s.Elements().Lookup(eid)
			if err != nil {
				return err
			}
			resp.Elements = append(resp.Elements, QueryElementCLI{
				ID:        e.ID,
				Tag:       e.Tag,
				Kind:      e.Kind.String(),
				Draggable: e.Kind.Draggable(),
				Container: e.Kind.Container(),
			})
		}
	}

	output, err := FormatResponse(resp, OutputFormat(queryFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
