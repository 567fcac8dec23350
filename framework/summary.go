package framework

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintResults writes the end-of-run summary: a table of outcomes, failures broken down by
// kind, and a list of every failed test.
func PrintResults(w io.Writer, results Results) {
	passed, failed, skipped := results.Counts()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	heading := color.New(color.FgHiCyan).SprintFunc()
	t.AppendHeader(table.Row{heading("OUTCOME"), heading("TESTS")})
	t.AppendRow(table.Row{"passed", passed})
	t.AppendRow(table.Row{"failed", failed})
	if failed > 0 {
		byKind := results.FailuresByKind()
		for _, k := range AllFailureKinds {
			if n := byKind[k]; n > 0 {
				t.AppendRow(table.Row{"  " + string(k), n})
			}
		}
	}
	t.AppendRow(table.Row{"skipped", skipped})
	t.AppendFooter(table.Row{"total", passed + failed + skipped})
	t.Render()
	fmt.Fprintln(w)

	if results.OK() {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "All tests passed")
		return
	}
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(w, "%d test(s) failed:\n", failed)
	for _, r := range results.Failures {
		kind := ""
		if len(r.Errors) > 0 {
			kind = string(r.Errors[0].Kind)
		}
		fmt.Fprintf(w, "  %s (%s)\n", r.TestID, kind)
	}
}
