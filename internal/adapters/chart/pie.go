// Package chart renders stash statistics as standalone HTML charts.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ErrEmpty is returned when there is nothing to plot
var ErrEmpty = errors.New("no data to chart")

// Slice is one wedge of the pie
type Slice struct {
	Label string
	Count int
	Bytes int64
}

// Measure selects which value sizes the wedges
type Measure int

const (
	ByCount Measure = iota
	ByBytes
)

func (m Measure) value(s Slice) int64 {
	if m == ByBytes {
		return s.Bytes
	}
	return int64(s.Count)
}

// Pie builds the chart. Slices with a zero value are left out.
func Pie(title string, slices []Slice, measure Measure) (*charts.Pie, error) {
	data := make([]opts.PieData, 0, len(slices))
	for _, s := range slices {
		v := measure.value(s)
		if v <= 0 {
			continue
		}
		data = append(data, opts.PieData{Name: s.Label, Value: v})
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	series := "Files"
	if measure == ByBytes {
		series = "Bytes"
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
	)
	pie.AddSeries(series, data).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}),
	)
	return pie, nil
}

// Render writes the chart page to w
func Render(w io.Writer, title string, slices []Slice, measure Measure) error {
	pie, err := Pie(title, slices, measure)
	if err != nil {
		return err
	}
	return pie.Render(w)
}

// WriteFile renders the chart page to path, creating parent directories
func WriteFile(path, title string, slices []Slice, measure Measure) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := Render(f, title, slices, measure); err != nil {
		f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}
