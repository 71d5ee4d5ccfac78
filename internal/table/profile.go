package table

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabclean/internal/stats"
)

// Report is a markdown-friendly profile of a Table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Warnings []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    Kind
	Unit    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Robust outliers (modified z-score via MAD)
	OutliersCount    int
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// DefaultRobustThreshold is the |modified z| above which Profile counts a value as a robust outlier.
const DefaultRobustThreshold = 3.5

// Profile summarizes every column of t. threshold <= 0 uses DefaultRobustThreshold.
func Profile(t *Table, threshold float64) *Report {
	if threshold <= 0 {
		threshold = DefaultRobustThreshold
	}
	rep := &Report{Name: t.Name, Rows: t.Rows()}
	for _, c := range t.Columns {
		s := ColumnSummary{Name: c.Name, Kind: c.Kind, Unit: c.Unit}
		switch c.Kind {
		case KindNumeric:
			m := stats.Describe(c.Nums)
			s.NonNull, s.Missing = m.N, m.Missing
			s.Min, s.Max, s.Mean, s.Std = m.Min, m.Max, m.Mean, m.SampleStd()
			if m.N >= 8 {
				s.OutlierThreshold = threshold
				median, mad := stats.MedianMAD(c.Nums)
				if mad > 0 {
					for _, v := range c.Nums {
						if math.IsNaN(v) {
							continue
						}
						if math.Abs(0.6745*(v-median)/mad) > threshold {
							s.OutliersCount++
						}
					}
				}
			}
		default:
			cats := map[string]int{}
			for i := range c.Strs {
				if c.Missing(i) {
					s.Missing++
					continue
				}
				s.NonNull++
				cats[c.Strs[i]]++
			}
			tops := make([]CategoryCount, 0, len(cats))
			for k, v := range cats {
				tops = append(tops, CategoryCount{Value: k, Count: v})
			}
			sort.Slice(tops, func(i, j int) bool {
				if tops[i].Count == tops[j].Count {
					return tops[i].Value < tops[j].Value
				}
				return tops[i].Count > tops[j].Count
			})
			if len(tops) > 5 {
				tops = tops[:5]
			}
			s.TopValues = tops
			s.Unique = len(cats)
		}
		if s.Missing > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has %d missing values", c.Name, s.Missing))
		}
		rep.Cols = append(rep.Cols, s)
	}
	return rep
}

// Markdown renders a compact profile suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := safeName(c.Name)
		if c.Unit != "" {
			name = fmt.Sprintf("%s [%s]", name, c.Unit)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric:
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
			}
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
