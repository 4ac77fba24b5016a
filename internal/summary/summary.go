// Package summary handles display of scan results and statistics
package summary

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/svjt78/code-to-pdf/internal/scanner"
)

// Logger defines the minimal logging interface required
type Logger interface {
	Info(format string, args ...interface{})
}

// DisplayResults logs the end results of an export and prints the elapsed
// time line to output.
func DisplayResults(
	logger Logger,
	output io.Writer,
	fileCount int,
	candidates int,
	duration time.Duration,
	quiet bool,
) {
	if quiet {
		return
	}
	logger.Info("Exported %d of %d candidate files.", fileCount, candidates)
	fmt.Fprintln(output, ElapsedLine(duration))
}

// ElapsedLine formats d as "Total time taken: X seconds (Y minutes)".
func ElapsedLine(d time.Duration) string {
	return fmt.Sprintf("Total time taken: %.2f seconds (%.2f minutes)", d.Seconds(), d.Minutes())
}

// DisplaySkippedItems renders the skipped items as a table sorted by path.
func DisplaySkippedItems(
	logger Logger,
	skippedItems []scanner.SkippedItem,
	output io.Writer,
	quiet bool,
) {
	infoLog := func(format string, args ...interface{}) {
		if !quiet {
			logger.Info(format, args...)
		}
	}

	if len(skippedItems) == 0 {
		infoLog("No items were skipped.")
		return
	}

	items := make([]scanner.SkippedItem, len(skippedItems))
	copy(items, skippedItems)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Path < items[j].Path
	})

	table := tablewriter.NewWriter(output)
	table.SetHeader([]string{"Path", "Type", "Reason"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT})

	for _, item := range items {
		typeStr := "FILE"
		if item.IsDir {
			typeStr = "DIR"
		}
		table.Append([]string{item.Path, typeStr, string(item.Reason)})
	}

	counts := CountByReason(items)
	table.SetFooter([]string{fmt.Sprintf("Skipped %d", len(items)), "", fmt.Sprintf("%d reasons", len(counts))})
	table.Render()
}

// CountByReason tallies skipped items per reason.
func CountByReason(items []scanner.SkippedItem) map[scanner.SkippedReason]int {
	counts := make(map[scanner.SkippedReason]int)
	for _, item := range items {
		counts[item.Reason]++
	}
	return counts
}
