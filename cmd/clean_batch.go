package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabclean/internal/outlier"
	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/KaramelBytes/tabclean/internal/utils"
)

var (
	cbInput   inputFlags
	cbRun     runFlags
	cbOutDir  string
	cbReports bool
	cbQuiet   bool
)

var cleanBatchCmd = &cobra.Command{
	Use:   "clean-batch <files...>",
	Short: "Clean several CSV/TSV/XLSX files with the same column plan",
	Long: `clean-batch expands globs, cleans every matched file with one plan and writes
<name>.clean.csv files into --out-dir. Existing outputs are never overwritten;
a numeric suffix is added instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opts, plan := cbRun.resolve(cmd, c)
		if plan.Empty() {
			return &outlier.ConfigError{Reason: "no column is assigned to zscore, iqr_left or iqr_right"}
		}
		log, err := newLogger(cmd, c)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		p, err := outlier.New(opts, log)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cbOutDir, 0o755); err != nil {
			return fmt.Errorf("mkdir out dir: %w", err)
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !cbQuiet {
				fmt.Fprintf(out, "[%d/%d] Cleaning %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := cbInput.load(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			loaded := t.Rows()
			if cbRun.dropMissing {
				if t, err = t.DropMissing(); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			res, err := p.Run(t, plan)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			var buf bytes.Buffer
			if err := table.WriteCSV(&buf, res.Table); err != nil {
				return err
			}
			base := outputBase(path, cbInput.sheetName)
			outFile := uniquePath(cbOutDir, base, ".clean.csv")
			if err := utils.SafeWriteFile(outFile, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if cbReports {
				b, err := utils.PrettyYAML(cleanReport{Source: path, Options: opts, MissingDropped: loaded - t.Rows(), Result: *res})
				if err != nil {
					return err
				}
				repFile := strings.TrimSuffix(outFile, ".clean.csv") + ".report.yaml"
				if err := utils.SafeWriteFile(repFile, b); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}
			if !cbQuiet {
				for _, w := range res.Warnings {
					fmt.Fprintf(out, "⚠ %s\n", w)
				}
				fmt.Fprintf(out, "✓ Kept %d of %d rows -> %s\n", res.RowsAfter, res.RowsBefore, filepath.Base(outFile))
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, removes
// duplicates and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// outputBase is the file name without extension, plus a slug of the sheet
// name for spreadsheets.
func outputBase(path, sheet string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if sheet == "" || !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return base
	}
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(sheet)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "sheet"
	}
	return base + "__sheet-" + slug
}

// uniquePath returns dir/base+ext, or dir/base__N+ext for the first free N >= 2.
func uniquePath(dir, base, ext string) string {
	cand := filepath.Join(dir, base+ext)
	for n := 2; ; n++ {
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
		cand = filepath.Join(dir, fmt.Sprintf("%s__%d%s", base, n, ext))
	}
}

func init() {
	rootCmd.AddCommand(cleanBatchCmd)
	cbInput.bind(cleanBatchCmd)
	cbRun.bind(cleanBatchCmd)
	cleanBatchCmd.Flags().StringVar(&cbOutDir, "out-dir", "cleaned", "directory for cleaned files")
	cleanBatchCmd.Flags().BoolVar(&cbReports, "reports", false, "also write a YAML report next to each cleaned file")
	cleanBatchCmd.Flags().BoolVar(&cbQuiet, "quiet", false, "suppress progress and non-essential output")
}
