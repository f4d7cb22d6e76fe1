// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

const (
	minChartWidth  = 20
	minChartHeight = 3
)

func clampChartSize(width, height int) (int, int) {
	return max(width, minChartWidth), max(height, minChartHeight)
}

// RenderLineChart plots a single series as an ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}
	width, height = clampChartSize(width, height)

	return asciigraph.Plot(data,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)
}

// RenderDualLineChart plots call volume and cost as two colored series
// on a shared axis. Shorter series are zero-padded to the longer one.
func RenderDualLineChart(calls, cost []float64, width, height int, caption string) string {
	if len(calls) == 0 && len(cost) == 0 {
		return styles.HelpStyle.Render("No data available")
	}
	width, height = clampChartSize(width, height)

	n := max(len(calls), len(cost))
	series := [][]float64{make([]float64, n), make([]float64, n)}
	copy(series[0], calls)
	copy(series[1], cost)

	return asciigraph.PlotMany(series,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Yellow),
	)
}

// RenderBarChart draws one horizontal bar per value, right-aligned
// labels on the left, numeric values on the right.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	peak := 0.0
	labelWidth := 0
	for _, v := range values {
		peak = max(peak, v)
	}
	for _, l := range labels {
		labelWidth = max(labelWidth, len(l))
	}
	if peak == 0 {
		peak = 1
	}

	// Room for the label column, the axis mark, and the value suffix.
	barWidth := max(width-labelWidth-10, 10)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		var label string
		if i < len(labels) {
			label = labels[i]
		}
		fill := int(v / peak * float64(barWidth))
		if fill < 0 {
			fill = 0
		}
		lines = append(lines, fmt.Sprintf("%*s │%s %.1f",
			labelWidth, label, strings.Repeat("█", fill), v))
	}
	return strings.Join(lines, "\n")
}

var sparkRunes = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline compresses a series into a width-limited run of
// block glyphs for inline display.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	stride := float64(len(values)) / float64(width)
	if stride < 1 {
		stride = 1
	}

	var out strings.Builder
	for i := 0; i < width; i++ {
		idx := int(float64(i) * stride)
		if idx >= len(values) {
			break
		}
		level := int(values[idx] / peak * float64(len(sparkRunes)-1))
		level = min(max(level, 0), len(sparkRunes)-1)
		out.WriteRune(sparkRunes[level])
	}
	return out.String()
}

// LegendItem is a single series label with its chart color.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend joins legend entries as colored swatches with labels.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		swatch := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, swatch+" "+item.Label)
	}
	return strings.Join(parts, "  ")
}
