package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mohsinsiddi/tokenforge/internal/state"
)

// Column defines a table column. Width 0 sizes the column to its widest cell.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
}

// NewTable creates a table with the given columns.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

// Render returns the table as a string. Cells are padded before styling so
// ANSI codes do not affect alignment.
func (t *Table) Render() string {
	widths := t.widths()
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cell := lipgloss.NewStyle().Foreground(ColorValue)

	var sb strings.Builder
	line := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		line[i] = header.Render(padR(col.Title, widths[i]))
	}
	sb.WriteString(strings.Join(line, " ") + "\n")
	for i := range t.Columns {
		line[i] = StyleMeta.Render(strings.Repeat("-", widths[i]))
	}
	sb.WriteString(strings.Join(line, " ") + "\n")

	for _, row := range t.Rows {
		for i := range t.Columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			line[i] = cell.Render(padR(v, widths[i]))
		}
		sb.WriteString(strings.Join(line, " ") + "\n")
	}
	return sb.String()
}

func (t *Table) widths() []int {
	w := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		if col.Width > 0 {
			w[i] = col.Width
			continue
		}
		w[i] = len([]rune(col.Title))
		for _, row := range t.Rows {
			if i < len(row) && len([]rune(row[i])) > w[i] {
				w[i] = len([]rune(row[i]))
			}
		}
	}
	return w
}

// padR left-aligns s in exactly width runes, truncating if needed.
func padR(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// KeyValueBlock renders key/value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-18s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}

// DeployResultBlock renders the outcome of a deploy attempt.
func DeployResultBlock(r *state.DeployResult, explorerURL string) string {
	if r == nil {
		return Meta("no deploy result recorded")
	}
	if !r.Success {
		pairs := [][2]string{{"Kind", r.Kind}, {"Error", r.Error}}
		return DangerBox(KeyValueBlock("Deploy failed", pairs))
	}
	network := "unknown"
	if r.Network != nil {
		network = r.Network.Name
		if network == "" {
			network = fmt.Sprintf("chain %d", r.Network.ChainID)
		}
	}
	pairs := [][2]string{
		{"Contract", Addr(r.ContractAddress)},
		{"Transaction", Addr(r.TransactionHash)},
		{"Network", ChainName(network)},
		{"Gas used", r.GasUsed},
		{"Block", r.BlockNumber},
	}
	if explorerURL != "" {
		pairs = append(pairs, [2]string{"Explorer", explorerURL})
	}
	return KeyValueBlock("Token deployed", pairs)
}
