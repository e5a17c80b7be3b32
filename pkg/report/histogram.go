package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/grafana/turnaround/pkg/config"
)

type Bucket struct {
	Low   float64
	High  float64
	Count int
}

func (b Bucket) Label() string {
	return fmt.Sprintf("%g-%g", b.Low, b.High)
}

// Bin counts values into chart.Bins equal width buckets over
// [chart.Min, chart.Max]. The last bucket is closed on the right so the
// clamped values land in it; anything outside the range is dropped.
func Bin(values []int, chart config.Chart) []Bucket {
	if chart.Bins <= 0 || chart.Max <= chart.Min {
		return nil
	}

	width := (chart.Max - chart.Min) / float64(chart.Bins)
	buckets := make([]Bucket, chart.Bins)
	for i := range buckets {
		buckets[i].Low = chart.Min + float64(i)*width
		buckets[i].High = chart.Min + float64(i+1)*width
	}

	for _, v := range values {
		x := float64(v)
		if x < chart.Min || x > chart.Max {
			continue
		}
		i := int(math.Floor((x - chart.Min) / width))
		if i >= chart.Bins {
			i = chart.Bins - 1
		}
		buckets[i].Count++
	}
	return buckets
}

// RenderHistogram writes a standalone HTML page with the histogram of values.
func RenderHistogram(w io.Writer, values []int, chart config.Chart, axisName string) error {
	buckets := Bin(values, chart)

	labels := make([]string, len(buckets))
	data := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label()
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: chart.Title,
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    chart.Title,
			Subtitle: fmt.Sprintf("%d items", len(values)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: axisName}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count"}),
	)
	bar.SetXAxis(labels).AddSeries(axisName, data)

	return bar.Render(w)
}
