package menu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atomicstack/bimview/internal/format/table"
)

// tableItems pairs each id with its formatted row.
func tableItems(ids []string, rows [][]string, alignments []table.Alignment) []Item {
	if len(rows) == 0 {
		return nil
	}
	lines := table.Format(rows, alignments)
	items := make([]Item, 0, len(lines))
	for i, line := range lines {
		items = append(items, Item{ID: ids[i], Label: line})
	}
	return items
}

// parseElementIDs reads one element id per line, as produced by a
// multi-selection.
func parseElementIDs(raw string) ([]int, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, fmt.Errorf("element id required")
	}
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(strings.TrimPrefix(f, "#"))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid element id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func errorResult(err error) ActionResult {
	return ActionResult{Err: err}
}
