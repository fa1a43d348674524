package chart

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/aalvaropc/numlab/internal/domain"
)

// Interactive builds a zoomable error-per-iteration line chart.
func Interactive(res domain.ProblemResult) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     types.ThemeWesteros,
			PageTitle: res.Name,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s (%s)", res.Name, res.Method),
			Subtitle: fmt.Sprintf("%s error, tolerance %g", res.Settings.ErrorType, res.Settings.Tolerance),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "error", Type: "log"}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)

	pts := Points(res.Trace)
	xs := make([]int, len(pts))
	errs := make([]opts.LineData, len(pts))
	tol := make([]opts.LineData, len(pts))
	for i, p := range pts {
		xs[i] = int(p.X)
		errs[i] = opts.LineData{Value: p.Y}
		tol[i] = opts.LineData{Value: res.Settings.Tolerance}
	}

	line.SetXAxis(xs).
		AddSeries("error", errs, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)})).
		AddSeries("tolerance", tol, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	return line
}

func writeHTML(res domain.ProblemResult, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return renderHTML(res, f)
}

func renderHTML(res domain.ProblemResult, w io.Writer) error {
	return Interactive(res).Render(w)
}
