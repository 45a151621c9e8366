package events

import (
	"errors"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/aonescu/kubelens/internal/types"
)

// Columns is the schema extracted from the server-side events table. Columns
// are matched by name, not by position, so extra or reordered columns in the
// server's header are accepted; a missing one is a header mismatch.
var Columns = []string{"Last Seen", "Object", "Reason", "Message"}

// ErrHeaderMismatch is returned when a table lacks one of Columns or a row is
// too short for the located columns.
var ErrHeaderMismatch = errors.New("events: table header mismatch")

func columnIndexes(defs []metav1.TableColumnDefinition) ([]int, error) {
	byName := make(map[string]int, len(defs))
	for i, def := range defs {
		if _, seen := byName[def.Name]; !seen {
			byName[def.Name] = i
		}
	}

	indexes := make([]int, len(Columns))
	for i, name := range Columns {
		idx, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrHeaderMismatch, name)
		}
		indexes[i] = idx
	}
	return indexes, nil
}

// rowsFromTable extracts Columns from every row of table and tags each row
// with namespace.
func rowsFromTable(table *metav1.Table, namespace string) ([]types.EventRow, error) {
	indexes, err := columnIndexes(table.ColumnDefinitions)
	if err != nil {
		return nil, err
	}

	rows := make([]types.EventRow, 0, len(table.Rows))
	for n, row := range table.Rows {
		cells := make([]string, len(indexes))
		for i, idx := range indexes {
			if idx >= len(row.Cells) {
				return nil, fmt.Errorf("%w: row %d has %d cells", ErrHeaderMismatch, n, len(row.Cells))
			}
			cells[i] = cellString(row.Cells[idx])
		}
		rows = append(rows, types.EventRow{
			LastSeen:  cells[0],
			Namespace: namespace,
			Object:    cells[1],
			Reason:    cells[2],
			Message:   cells[3],
		})
	}
	return rows, nil
}

func cellString(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}
