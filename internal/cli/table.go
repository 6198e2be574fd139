package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// newTable returns a borderless table writer that renders to out.
func newTable(out io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row(header))
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}
