package table

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Options controls how delimited and spreadsheet input is parsed into a Table.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, chosen from the file extension (',' or '\t').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
}

// DefaultOptions returns reasonable defaults for loading a dataset.
func DefaultOptions() Options {
	return Options{}
}

// builder accumulates raw string records and infers column kinds once all
// rows are seen.
type builder struct {
	name    string
	headers []string
	raw     [][]string // per column
	opt     Options
}

func newBuilder(name string, header []string, opt Options) *builder {
	b := &builder{name: name, opt: opt}
	b.headers = make([]string, len(header))
	for i, h := range header {
		b.headers[i] = strings.TrimSpace(h)
	}
	b.raw = make([][]string, len(header))
	return b
}

func (b *builder) add(rec []string) {
	for j := range b.raw {
		v := ""
		if j < len(rec) {
			v = strings.TrimSpace(rec[j])
		}
		b.raw[j] = append(b.raw[j], v)
	}
}

func (b *builder) rows() int {
	if len(b.raw) == 0 {
		return 0
	}
	return len(b.raw[0])
}

// build infers each column's kind: numeric when every non-empty cell parses
// as a number, categorical otherwise. Names are unique ignoring case: a
// stripped name that is already taken falls back to the full header, then
// to a numeric suffix.
func (b *builder) build() *Table {
	t := &Table{Name: b.name}
	taken := make(map[string]struct{}, len(b.headers))
	for j, h := range b.headers {
		name, unit := splitUnits(h)
		if name == "" {
			name = "column_" + strconv.Itoa(j+1)
		}
		name = uniqueName(taken, name, h)
		c := &Column{Name: name, Header: h, Unit: unit}
		vals := b.raw[j]
		if c.Unit == "" {
			for _, v := range vals {
				if strings.HasSuffix(v, "%") {
					c.Unit = "%"
					break
				}
			}
		}
		nums := make([]float64, len(vals))
		numeric, seen := true, 0
		for i, v := range vals {
			if v == "" {
				nums[i] = math.NaN()
				continue
			}
			x, ok := parseNumeric(v, b.opt)
			if !ok {
				numeric = false
				break
			}
			nums[i] = x
			seen++
		}
		if numeric && seen > 0 {
			c.Kind = KindNumeric
			c.Nums = nums
		} else {
			c.Kind = KindCategorical
			c.Strs = append([]string(nil), vals...)
		}
		t.Columns = append(t.Columns, c)
	}
	return t
}

func uniqueName(taken map[string]struct{}, name, header string) string {
	free := func(n string) bool {
		_, ok := taken[strings.ToLower(n)]
		return !ok
	}
	if !free(name) && header != "" && free(header) {
		name = header
	}
	for base, n := name, 2; !free(name); n++ {
		name = base + "_" + strconv.Itoa(n)
	}
	taken[strings.ToLower(name)] = struct{}{}
	return name
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Sleep Duration (hours)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
