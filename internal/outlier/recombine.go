package outlier

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabclean/internal/table"
)

// Recombine inner-joins base and every filter result on the row identifier.
// A row survives only if its identifier is present in all inputs; non-key
// columns from every input are concatenated, base first. Output rows are in
// ascending identifier order and still carry the identifier.
//
// base may be nil, in which case the results alone are joined. A base with
// no columns but a full identifier list leaves the intersection unchanged.
// Two inputs sharing a column name is a *ConfigError.
func Recombine(base *table.Table, results ...*table.Table) (*table.Table, error) {
	var inputs []*table.Table
	if base != nil {
		inputs = append(inputs, base)
	}
	inputs = append(inputs, results...)
	if len(inputs) == 0 {
		return nil, fmt.Errorf("recombine: no tables to join")
	}

	owner := map[string]int{}
	positions := make([]map[int]int, len(inputs))
	for n, in := range inputs {
		if in.IDs == nil {
			return nil, fmt.Errorf("recombine: input %d (%s) has no row identifier", n, strings.Join(in.Names(), ","))
		}
		for _, c := range in.Columns {
			key := strings.ToLower(c.Name)
			if prev, ok := owner[key]; ok {
				return nil, &ConfigError{Column: c.Name, Reason: fmt.Sprintf("appears in join inputs %d and %d", prev, n)}
			}
			owner[key] = n
		}
		idx := make(map[int]int, len(in.IDs))
		for row, id := range in.IDs {
			if _, dup := idx[id]; dup {
				return nil, fmt.Errorf("recombine: row identifier %d repeated in input %d", id, n)
			}
			idx[id] = row
		}
		positions[n] = idx
	}

	// Intersect starting from the smallest input.
	smallest := 0
	for n, in := range inputs {
		if len(in.IDs) < len(inputs[smallest].IDs) {
			smallest = n
		}
	}
	ids := make([]int, 0, len(inputs[smallest].IDs))
	for _, id := range inputs[smallest].IDs {
		present := true
		for n := range inputs {
			if _, ok := positions[n][id]; !ok {
				present = false
				break
			}
		}
		if present {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	out := &table.Table{Name: inputs[0].Name, IDs: ids}
	for n, in := range inputs {
		rows := make([]int, len(ids))
		for i, id := range ids {
			rows[i] = positions[n][id]
		}
		out.Columns = append(out.Columns, in.Take(rows).Columns...)
	}
	return out, nil
}
