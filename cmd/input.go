package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabclean/internal/table"
)

// inputFlags are the table-loading flags shared by clean, sweep and profile.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from extension or config)")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load (default from config)")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if no sheet name is given)")
}

func (f *inputFlags) options(defaultDelimiter string) (table.Options, error) {
	opt := table.DefaultOptions()
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	delim := f.delimiter
	if delim == "" {
		delim = defaultDelimiter
	}
	switch delim {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	return opt, nil
}

// load reads path as XLSX or delimited text depending on its extension.
func (f *inputFlags) load(path string) (*table.Table, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	opt, err := f.options(c.Delimiter)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		sheet := f.sheetName
		if sheet == "" {
			sheet = c.Sheet
		}
		return table.ReadXLSX(path, opt, sheet, f.sheetIndex)
	}
	return table.ReadCSV(path, opt)
}

// splitList accepts repeated flags as well as comma-separated values and
// trims blanks.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
