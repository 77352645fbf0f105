package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"dropship-reconciler/internal/features/reconciliation/domain"

	"github.com/fatih/color"
)

// printReport writes a human readable run summary for the run command.
func printReport(w io.Writer, report *domain.RunReport) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	bold.Fprintf(w, "Run %s\n", report.ID)
	fmt.Fprintf(w, "  Duration:     %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(w, "  Scraped:      %d\n", report.Scraped)
	fmt.Fprintf(w, "  Skipped:      %d\n", report.Skipped)
	fmt.Fprintf(w, "  Not complete: %d\n", report.NotComplete)
	if report.Failed > 0 {
		red.Fprintf(w, "  Failed:       %d\n", report.Failed)
	}

	green.Fprintf(w, "  Completed:    %d\n", len(report.Completed))
	if len(report.Completed) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(report.Completed, ", "))
	}

	fmt.Fprintf(w, "  Rows updated: %d\n", report.RowsUpdated)
	if report.RowsFailed > 0 {
		red.Fprintf(w, "  Rows failed:  %d\n", report.RowsFailed)
	}

	switch {
	case report.Finalized:
		green.Fprintln(w, "  Marked shipped in storefront")
	case report.RowsUpdated > 0:
		yellow.Fprintln(w, "  Ledger updated but storefront not finalized")
	}

	if report.Error != "" {
		red.Fprintf(w, "  Error: %s\n", report.Error)
	}
}
