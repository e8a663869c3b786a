package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dkerrors "domkey/internal/errors"
	"domkey/internal/storage"
)

var (
	verifyFormat  string
	verifyAgainst string
	verifyPass    string
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file>",
	Short: "Check that indexing is deterministic",
	Long: `Indexes the file twice in independent passes and compares the fingerprints
of the two indexes. Identical input must produce identical lanes and branches.

With --against the fingerprint is also compared with a pass stored by
"domkey index --sqlite", by default the most recent one.

Examples:
  domkey verify tree.yaml
  domkey verify tree.yaml --against index.db
  domkey verify trace.toml --against index.db --pass 6f1c...`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "human", "Output format (human, json, yaml)")
	verifyCmd.Flags().StringVar(&verifyAgainst, "against", "", "Also compare with a pass stored in this SQLite database")
	verifyCmd.Flags().StringVar(&verifyPass, "pass", "", "Stored pass id to compare with (default: latest)")
	rootCmd.AddCommand(verifyCmd)
}

// VerifyResponseCLI reports the outcome of a determinism check.
type VerifyResponseCLI struct {
	Path       string `json:"path" yaml:"path"`
	Stable     bool   `json:"stable" yaml:"stable"`
	First      string `json:"first" yaml:"first"`
	Second     string `json:"second" yaml:"second"`
	StoredPass string `json:"storedPass,omitempty" yaml:"storedPass,omitempty"`
	Stored     string `json:"stored,omitempty" yaml:"stored,omitempty"`
	Nodes      int    `json:"nodes" yaml:"nodes"`
	Violations int    `json:"violations" yaml:"violations"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	if verifyPass != "" && verifyAgainst == "" {
		return fmt.Errorf("--pass needs --against")
	}
	ctx, cancel := newContext()
	defer cancel()

	first, sum, err := runPass(ctx, rt, args[0])
	if err != nil {
		return err
	}
	defer first.End()

	second, _, err := runPass(ctx, rt, args[0])
	if err != nil {
		return err
	}
	defer second.End()

	resp := &VerifyResponseCLI{
		Path:       args[0],
		First:      first.Fingerprint(),
		Second:     second.Fingerprint(),
		Nodes:      sum.Nodes,
		Violations: sum.Violations,
	}
	resp.Stable = resp.First == resp.Second

	if verifyAgainst != "" {
		if err := compareStored(rt, resp); err != nil {
			return err
		}
	}

	output, err := FormatResponse(resp, OutputFormat(verifyFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	if !resp.Stable {
		return dkerrors.Newf(dkerrors.InternalError, "fingerprints differ for %s", args[0])
	}
	return nil
}

// compareStored loads the stored fingerprint into resp and folds it into
// resp.Stable.
func compareStored(rt *runtime, resp *VerifyResponseCLI) error {
	db, err := storage.Open(verifyAgainst, rt.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	passID := verifyPass
	if passID == "" {
		if passID, err = db.LatestPass(); err != nil {
			return err
		}
	}
	stored, err := db.Fingerprint(passID)
	if err != nil {
		return err
	}
	resp.StoredPass = passID
	resp.Stored = stored
	resp.Stable = resp.Stable && stored == resp.First
	return nil
}
