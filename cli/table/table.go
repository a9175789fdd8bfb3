// Package table renders the small, fixed-shape tabular reports `--backends`
// and `--index` print (spec.md §6): a handful of short columns, a header
// row, and left- or right-aligned cells padded to a flexible or fixed
// width. Grounded on the teacher's own resource-listing table, trimmed to
// what seeker's two report commands actually exercise — neither sorts rows
// (backends.go emits them in `backend.Select`'s fixed preference order,
// index.go's filepaths already arrive pre-sorted from `symbol.SortedFilepaths`),
// so the sort-by-column machinery the teacher carried is dropped rather than
// kept unused.
package table

import (
	"fmt"
	"io"
	"strings"
)

type (
	// Table is a set of columns and the rows to render under them.
	Table struct {
		Columns       []Column
		Data          []Row
		ColumnSpacing string
	}

	// Row is one row's cell values, one per column.
	Row = []string

	// Column describes one column's header and width behaviour.
	Column struct {
		Header string
		Width  int
		// Hide suppresses this column's cells (and its header) entirely.
		Hide bool
		// Flexible widens the column to its widest cell instead of Width.
		Flexible  bool
		LeftAlign bool
	}
)

const defaultColumnSpacing = "  "

// NewTable constructs a table with the default column spacing.
func NewTable(cols []Column, data []Row) Table {
	return Table{
		Columns:       cols,
		Data:          data,
		ColumnSpacing: defaultColumnSpacing,
	}
}

// Render writes the header row followed by every data row to w.
func (t *Table) Render(w io.Writer) {
	widths := t.columnWidths()
	t.renderRow(w, t.headerRow(), widths)
	for _, row := range t.Data {
		t.renderRow(w, row, widths)
	}
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.Columns))
	for c, col := range t.Columns {
		width := col.Width
		if col.Flexible {
			for _, row := range t.Data {
				if n := len([]rune(row[c])); n > width {
					width = n
				}
			}
		}
		widths[c] = width
	}
	return widths
}

func (t *Table) renderRow(w io.Writer, row Row, columnWidths []int) {
	for c, col := range t.Columns {
		if col.Hide {
			continue
		}
		value := []rune(row[c])
		if len(value) > columnWidths[c] {
			value = value[:columnWidths[c]]
		}
		padding := strings.Repeat(" ", columnWidths[c]-len(value))
		if col.LeftAlign {
			fmt.Fprintf(w, "%s%s%s", string(value), padding, t.ColumnSpacing)
		} else {
			fmt.Fprintf(w, "%s%s%s", padding, string(value), t.ColumnSpacing)
		}
	}
	fmt.Fprint(w, "\n")
}

func (t *Table) headerRow() Row {
	row := make(Row, len(t.Columns))
	for c, col := range t.Columns {
		row[c] = col.Header
	}
	return row
}
