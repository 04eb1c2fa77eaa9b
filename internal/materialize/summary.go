package materialize

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

func (m *Materializer) warnf(format string, args ...any) {
	fmt.Fprintf(m.opts.Out, "  %s %s\n", yellow("Warning:"), fmt.Sprintf(format, args...))
}

// RenderSummary prints the per-category table and run totals.
func RenderSummary(w io.Writer, stats *Stats, outputRoot string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Train", "Test", "Anomaly Types"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, category := range stats.Categories {
		cs := stats.PerCategory[category]
		table.Append([]string{
			category,
			strconv.Itoa(cs.Train),
			strconv.Itoa(cs.Test()),
			strconv.Itoa(cs.AnomalyTypes()),
		})
	}
	table.Render()

	fmt.Fprintf(w, "Categories processed: %d\n", len(stats.Categories))
	fmt.Fprintf(w, "Links created:        %s\n", green(strconv.Itoa(stats.TotalLinks)))
	if stats.MissingFiles > 0 {
		fmt.Fprintf(w, "Missing files:        %s\n", yellow(strconv.Itoa(stats.MissingFiles)))
	} else {
		fmt.Fprintf(w, "Missing files:        0\n")
	}
	fmt.Fprintf(w, "Output directory:     %s\n", outputRoot)
}
