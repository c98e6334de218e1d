package console

import (
	"fmt"
	"io"
	"strings"
)

// Writer renders the analysis report sections to a terminal.
type Writer struct {
	w io.Writer
}

// NewWriter creates a new console writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Section prints a report section heading.
func (c *Writer) Section(title string) {
	fmt.Fprintf(c.w, "\n=== %s ===\n\n", title)
}

// Line prints one formatted line.
func (c *Writer) Line(format string, args ...interface{}) {
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Blank prints an empty line.
func (c *Writer) Blank() {
	fmt.Fprintln(c.w)
}

// Table prints rows under upper-cased headers, columns padded to their
// widest cell.
func (c *Writer) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(c.w, "(no rows)")
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		fmt.Fprintf(c.w, "%-*s  ", widths[i], strings.ToUpper(h))
	}
	fmt.Fprintln(c.w)

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(c.w, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(c.w)
	}
}
