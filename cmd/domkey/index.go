package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"domkey/internal/export"
	"domkey/internal/storage"
)

var (
	indexFormat   string
	indexOut      string
	indexCompress bool
	indexSQLite   string
)

var indexCmd = &cobra.Command{
	Use:   "index <file>",
	Short: "Index an element tree and print the result",
	Long: `Runs one indexing pass over the given file and prints the resulting
lanes and branches.

Examples:
  domkey index page.html
  domkey index tree.yaml --format json
  domkey index tree.yaml --format yaml --out pass.yaml.zst --compress
  domkey index trace.toml --sqlite index.db`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexFormat, "format", "", "Output format: human, json, yaml, toml (default from config)")
	indexCmd.Flags().StringVar(&indexOut, "out", "", "Write the snapshot to a file instead of stdout")
	indexCmd.Flags().BoolVar(&indexCompress, "compress", false, "zstd-compress the snapshot (requires --out)")
	indexCmd.Flags().StringVar(&indexSQLite, "sqlite", "", "Also store the snapshot in this SQLite database")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()
	ctx, cancel := newContext()
	defer cancel()

	name := indexFormat
	if name == "" {
		name = rt.cfg.Export.Format
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}
	compress := indexCompress || rt.cfg.Export.Compress
	if compress && indexOut == "" {
		return fmt.Errorf("--compress needs --out")
	}

	s, _, err := runPass(ctx, rt, args[0])
	if err != nil {
		return err
	}
	defer s.End()

	snap := export.FromSession(s)

	if indexSQLite != "" {
		db, err := storage.Open(indexSQLite, rt.logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.SaveSnapshot(snap); err != nil {
			return err
		}
	}

	if indexOut != "" {
		if err := export.WriteFile(indexOut, snap, format, compress); err != nil {
			return err
		}
		rt.logger.Info("Snapshot written", "path", indexOut, "format", string(format), "compressed", compress)
		return nil
	}
	return export.Encode(cmd.OutOrStdout(), snap, format)
}
