// Package output renders daemon state for the CLI: a monitors table and
// an ASCII/Unicode sketch of the workspace grid.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/sys/unix"

	"github.com/yourusername/gridswitch/internal/switcher"
)

// cell sketch geometry, in characters
const (
	cellWidth  = 9
	cellHeight = 3
)

// PrintStatus renders the daemon status to w.
func PrintStatus(w io.Writer, st switcher.Status, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "Workspace grid %dx%d, at (%d, %d)\n\n", st.Cols, st.Rows, st.Col, st.Row)

	fmt.Fprintln(w, renderGrid(st))
	fmt.Fprintln(w)

	if len(st.Monitors) > 0 {
		printMonitorsTable(w, st)
	}
	return nil
}

// renderGrid sketches the grid with the current cell highlighted.
func renderGrid(st switcher.Status) string {
	cols, rows := st.Cols, st.Rows
	if cols < 1 || rows < 1 {
		return ""
	}
	// Shrink the sketch rather than overflow a narrow terminal.
	cw := cellWidth
	if termWidth, _ := terminalSize(); cols*cw+1 > termWidth {
		cw = 3
	}

	unicode := supportsUnicode()
	highlight := '#'
	if unicode {
		highlight = '▒'
	}

	canvas := NewCanvas(cols*cw+1, rows*cellHeight+1, unicode)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x, y := col*cw, row*cellHeight
			canvas.DrawBox(x, y, cw+1, cellHeight+1)
			if col == st.Col && row == st.Row {
				canvas.FillRect(x+1, y+1, cw-1, cellHeight-1, highlight)
			} else if cw > 3 {
				canvas.DrawTextCentered(x+1, y+cellHeight/2, cw-1, fmt.Sprintf("%d,%d", col, row))
			}
		}
	}

	sketch := canvas.String()
	if color.NoColor {
		return sketch
	}
	// Tint only the highlight so the frame stays readable.
	return strings.ReplaceAll(sketch, string(highlight), color.GreenString(string(highlight)))
}

func printMonitorsTable(w io.Writer, st switcher.Status) {
	table := tablewriter.NewWriter(w)
	table.Header("Monitor", "Resolution", "Position", "Active")

	for _, m := range st.Monitors {
		active := ""
		if m.Name == st.ActiveMonitor {
			active = "*"
		}
		table.Append(
			m.Name,
			fmt.Sprintf("%dx%d", m.Width, m.Height),
			fmt.Sprintf("%d,%d", m.X, m.Y),
			active,
		)
	}
	table.Render()
}

// terminalSize returns the stdout dimensions, defaulting to 80x24 when
// not a terminal.
func terminalSize() (width, height int) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

func supportsUnicode() bool {
	lang := os.Getenv("LANG")
	lcAll := os.Getenv("LC_ALL")
	return strings.Contains(lang, "UTF-8") || strings.Contains(lcAll, "UTF-8")
}
