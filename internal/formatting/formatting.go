package formatting

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aonescu/kubelens/internal/types"
)

// MinCellWidth is the left-aligned width of every cell but the message.
const MinCellWidth = 4

// DimStyle renders the message line of an event in bright black.
var DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// FormatEventRow lays cells out on one line, each padded to MinCellWidth and
// followed by two spaces. The last cell goes on its own line as "> message"
// in style, followed by a blank continuation line.
func FormatEventRow(cells []string, style lipgloss.Style) string {
	var output strings.Builder
	last := len(cells) - 1

	for i, cell := range cells {
		if i == last {
			output.WriteString("\n")
			output.WriteString(style.Render("> " + cell))
			output.WriteString("\n ")
			continue
		}
		output.WriteString(fmt.Sprintf("%-*s  ", MinCellWidth, cell))
	}

	return output.String()
}

// FormatEventRows formats rows in the order given.
func FormatEventRows(rows []types.EventRow, style lipgloss.Style) []string {
	formatted := make([]string, 0, len(rows))
	for _, row := range rows {
		formatted = append(formatted, FormatEventRow(row.Cells(), style))
	}
	return formatted
}
