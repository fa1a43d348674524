package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aalvaropc/numlab/internal/domain"
)

func checkFormat(format string) error {
	switch format {
	case "pretty", "", "json":
		return nil
	}
	return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRun(w io.Writer, run domain.RunResult, runID string, format string, trace bool) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if format == "json" {
		return printJSON(w, map[string]any{
			"run_id": runID,
			"run":    run,
		})
	}
	printPrettyRun(w, run, runID, trace)
	return nil
}

func printPrettyRun(w io.Writer, run domain.RunResult, runID string, trace bool) {
	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Study:    %s\n", run.StudyName)
	if run.ProfileName != "" {
		fmt.Fprintf(w, "Profile:  %s\n", run.ProfileName)
	}
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", total)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:   %s\n", runID)
	}
	fmt.Fprintln(w)

	for _, r := range run.Results {
		printPrettyProblem(w, r, trace)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d problem(s), %d failed\n", len(run.Results), run.Failures())
}

func printPrettyProblem(w io.Writer, r domain.ProblemResult, trace bool) {
	status := "OK"
	if r.Failed() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "- [%s] %s (%s) %dms\n", status, r.Name, r.Method, r.LatencyMS)

	if r.Error != nil {
		fmt.Fprintf(w, "  error: %s (%s)\n", r.Error.Message, r.Error.Kind)
	}
	switch {
	case r.Root != nil:
		fmt.Fprintf(w, "  root: %s\n", num(*r.Root))
	case len(r.Solution) > 0:
		fmt.Fprintf(w, "  solution: %s\n", vector(r.Solution))
	}
	fmt.Fprintf(w, "  converged: %t after %d iteration(s), error %s (%s, tol %s)\n",
		r.Converged, r.Iterations, num(r.FinalError), r.Settings.ErrorType, num(r.Settings.Tolerance))

	if d := r.Linear; d != nil {
		fmt.Fprintf(w, "  spectral radius: %s (converges=%t)\n", num(d.SpectralRadius), d.Converges)
	}

	if len(r.Assertions) > 0 {
		pass, fail := countAssertionPassFail(r.Assertions)
		fmt.Fprintf(w, "  assertions: %d pass / %d fail\n", pass, fail)
		for _, a := range r.Assertions {
			mark := "✓"
			if !a.Passed {
				mark = "✗"
			}
			fmt.Fprintf(w, "    %s %s: %s\n", mark, a.Name, a.Message)
		}
	}

	if trace && r.Trace.Len() > 0 {
		fmt.Fprintln(w, indent(renderTrace(r.Trace), "  "))
	}
}

// renderTrace draws the iteration history as a table.
func renderTrace(t domain.Trace) string {
	headers := append([]string{"n"}, t.Columns...)
	headers = append(headers, "error")

	rows := make([][]string, 0, t.Len())
	for _, rec := range t.Records {
		row := []string{strconv.Itoa(rec.Iteration)}
		for _, v := range rec.State {
			row = append(row, num(v))
		}
		row = append(row, num(rec.Error))
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func printComparison(w io.Writer, cmp domain.Comparison, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if format == "json" {
		return printJSON(w, cmp)
	}

	fmt.Fprintf(w, "Problem: %s (tol %s, %s error, max %d iterations)\n\n",
		cmp.Problem, num(cmp.Settings.Tolerance), cmp.Settings.ErrorType, cmp.Settings.MaxIterations)

	rows := make([][]string, 0, len(cmp.Entries))
	for i, e := range cmp.Entries {
		result := "-"
		switch {
		case e.Root != nil:
			result = num(*e.Root)
		case len(e.Solution) > 0:
			result = vector(e.Solution)
		}
		note := ""
		if e.Error != nil {
			note = string(e.Error.Kind)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(e.Method),
			strconv.FormatBool(e.Converged),
			strconv.Itoa(e.Iterations),
			num(e.FinalError),
			result,
			fmt.Sprintf("%dµs", e.RuntimeUS),
			note,
		})
	}

	fmt.Fprintln(w, table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "method", "converged", "iterations", "error", "result", "runtime", "failure").
		Rows(rows...).
		String())

	if best, ok := cmp.Best(); ok {
		fmt.Fprintf(w, "\nBest: %s\n", best.Method)
	}
	return nil
}

func countAssertionPassFail(in []domain.AssertionResult) (pass int, fail int) {
	for _, a := range in {
		if a.Passed {
			pass++
		} else {
			fail++
		}
	}
	return pass, fail
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func vector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = num(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
