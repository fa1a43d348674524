package tui

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/table"

	"github.com/aalvaropc/numlab/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

func renderResultDetails(r domain.ProblemResult) string {
	var b strings.Builder

	if r.Error != nil {
		b.WriteString("Error:\n")
		b.WriteString("  - kind: ")
		b.WriteString(string(r.Error.Kind))
		b.WriteString("\n  - msg: ")
		b.WriteString(r.Error.Message)
		b.WriteString("\n\n")
	}

	switch {
	case r.Root != nil:
		b.WriteString("Root: " + num(*r.Root) + "\n")
	case len(r.Solution) > 0:
		parts := make([]string, len(r.Solution))
		for i, v := range r.Solution {
			parts[i] = num(v)
		}
		b.WriteString("Solution: [" + strings.Join(parts, ", ") + "]\n")
	}
	b.WriteString(fmt.Sprintf("Converged: %t\nIterations: %d\nError: %s (%s, tol %s)\nLatency: %dms\n\n",
		r.Converged, r.Iterations, num(r.FinalError), r.Settings.ErrorType, num(r.Settings.Tolerance), r.LatencyMS))

	if d := r.Linear; d != nil {
		b.WriteString(fmt.Sprintf("Spectral radius: %s (converges=%t)\n\n", num(d.SpectralRadius), d.Converges))
	}

	if len(r.Assertions) > 0 {
		b.WriteString("Assertions:\n")
		for _, a := range r.Assertions {
			status := "FAIL"
			if a.Passed {
				status = "PASS"
			}
			b.WriteString("  - ")
			b.WriteString(a.Name)
			b.WriteString(" [")
			b.WriteString(status)
			b.WriteString("] ")
			b.WriteString(a.Message)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// traceTable builds a scrollable table over a trace. Cell width follows the
// column header, with room for eight significant digits.
func traceTable(t domain.Trace, height int) table.Model {
	headers := append([]string{"n"}, t.Columns...)
	headers = append(headers, "error")

	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		w := 14
		if i == 0 {
			w = 4
		}
		if len(h) > w {
			w = len(h)
		}
		cols[i] = table.Column{Title: h, Width: w}
	}

	rows := make([]table.Row, 0, t.Len())
	for _, rec := range t.Records {
		row := table.Row{strconv.Itoa(rec.Iteration)}
		for _, v := range rec.State {
			row = append(row, num(v))
		}
		row = append(row, num(rec.Error))
		rows = append(rows, row)
	}

	if height < 3 {
		height = 3
	}
	return table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
}
