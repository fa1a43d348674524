// Package chart draws convergence charts from iteration traces.
package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/ports"
)

// Floor replaces errors too small for a log axis.
const Floor = 1e-16

type Renderer struct {
	format string
	width  vg.Length
	height vg.Length
}

type Option func(*Renderer)

// WithFormat selects the output format by extension: png, svg, pdf or html.
// html writes an interactive page instead of a static image.
func WithFormat(ext string) Option {
	return func(r *Renderer) { r.format = strings.TrimPrefix(strings.ToLower(ext), ".") }
}

func WithSize(w, h vg.Length) Option {
	return func(r *Renderer) { r.width, r.height = w, h }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{format: "png", width: 6 * vg.Inch, height: 4 * vg.Inch}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.ChartRenderer = (*Renderer)(nil)

// RenderRun writes one chart per problem with a non-empty trace and returns
// the written paths in problem order.
func (r *Renderer) RenderRun(run domain.RunResult, dir string) ([]string, error) {
	switch r.format {
	case "png", "svg", "pdf", "html":
	default:
		return nil, &domain.OpError{
			Op:   "chart.render",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unsupported format %q: %w", r.format, domain.ErrInvalidConfig),
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &domain.OpError{Op: "chart.mkdir", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	prefix := slug(run.StudyName)
	if prefix == "" {
		prefix = "run"
	}

	var paths []string
	for i, res := range run.Results {
		if res.Trace.Len() == 0 {
			continue
		}
		name := slug(res.Name)
		if name == "" {
			name = fmt.Sprintf("problem-%d", i+1)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", prefix, name, r.format))
		if err := r.write(res, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Renderer) write(res domain.ProblemResult, path string) error {
	if r.format == "html" {
		if err := writeHTML(res, path); err != nil {
			return &domain.OpError{Op: "chart.save", Kind: domain.KindExecution, Path: path, Err: err}
		}
		return nil
	}

	p, err := Convergence(res)
	if err != nil {
		return &domain.OpError{Op: "chart.plot", Kind: domain.KindExecution, Path: res.Name, Err: err}
	}
	if err := p.Save(r.width, r.height, path); err != nil {
		return &domain.OpError{Op: "chart.save", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// Convergence plots the error of every iteration on a log scale.
func Convergence(res domain.ProblemResult) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", res.Name, res.Method)
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = fmt.Sprintf("%s error", res.Settings.ErrorType)
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	line, points, err := plotter.NewLinePoints(Points(res.Trace))
	if err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid(), line, points)
	p.Legend.Add("error", line, points)

	if tol := res.Settings.Tolerance; tol > 0 {
		ref := plotter.NewFunction(func(float64) float64 { return tol })
		ref.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(ref)
		p.Legend.Add("tolerance", ref)
	}
	return p, nil
}

// Points converts a trace into plot points, clamping errors at Floor.
func Points(t domain.Trace) plotter.XYs {
	pts := make(plotter.XYs, 0, t.Len())
	for _, rec := range t.Records {
		e := rec.Error
		if math.IsNaN(e) || e < Floor {
			e = Floor
		}
		pts = append(pts, plotter.XY{X: float64(rec.Iteration), Y: e})
	}
	return pts
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
