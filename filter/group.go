package filter

import (
	"sort"

	"github.com/carbocation/microview/metadata"
)

// Group is a set of rows sharing one value of a column.
type Group struct {
	Field metadata.Field
	Key   string
	Rows  []metadata.Row
}

// GroupBy partitions rows by field. Groups are ordered by key and the rows
// inside each group by filename, which lines the images up for side by side
// comparison. When field is empty a single group holding rows in their
// original order is returned.
func GroupBy(rows []metadata.Row, field metadata.Field) []Group {
	if field == "" {
		return []Group{{Rows: rows}}
	}

	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, row := range rows {
		key := row.Value(field)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, Group{Field: field, Key: key})
		}
		groups[pos].Rows = append(groups[pos].Rows, row)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	for _, g := range groups {
		rows := g.Rows
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Filename < rows[j].Filename
		})
	}

	return groups
}
