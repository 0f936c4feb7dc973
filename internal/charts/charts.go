package charts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// DefaultTopPatterns is the number of patterns charted when topN is not positive.
const DefaultTopPatterns = 15

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string   // Chart title
	Subtitle   string   // Chart subtitle
	SeriesName string   // Legend name of the single series
	Width      string   // Chart width (e.g., "900px")
	Height     string   // Chart height (e.g., "500px")
	Theme      string   // Chart theme
	ShowLegend bool     // Show legend
	Horizontal bool     // Draw bars along the x-axis
	Colors     []string // Custom colors
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		SeriesName: "Count",
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		ShowLegend: true,
		Colors:     []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272", "#FC8452", "#9A60B4", "#EA7CCC"},
	}
}

// DataPoint represents a single data point in a chart.
type DataPoint struct {
	Label string
	Value float64
}

// RenderBarChart creates an interactive bar chart HTML file.
func RenderBarChart(data []DataPoint, config ChartConfig, outputPath string) error {
	if len(data) == 0 {
		return fmt.Errorf("no data points provided")
	}

	bar := charts.NewBar()

	// Set global options
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(config.ShowLegend),
		}),
	)
	if len(config.Colors) > 0 {
		bar.SetGlobalOptions(charts.WithColorsOpts(opts.Colors{config.Colors[0]}))
	}

	xLabels := make([]string, len(data))
	yData := make([]opts.BarData, len(data))
	for i, point := range data {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries(config.SeriesName, yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "right",
			}),
		)
	if config.Horizontal {
		bar.XYReversal()
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// RenderCandidateChart draws the matcher's vote tally for one selection.
func RenderCandidateChart(tally []recommend.Candidate, catalog *recommend.Catalog, outputPath string) error {
	points := make([]DataPoint, len(tally))
	for i, candidate := range tally {
		points[i] = DataPoint{
			Label: catalog.DisplayName(candidate.ItemID),
			Value: float64(candidate.Score),
		}
	}

	config := DefaultChartConfig()
	config.Title = "Candidate Heroes"
	config.Subtitle = "Votes from matching pick patterns"
	config.SeriesName = "Votes"
	return RenderBarChart(points, config, outputPath)
}

// RenderPatternSupportChart draws the topN patterns of set by support.
func RenderPatternSupportChart(set *recommend.PatternSet, catalog *recommend.Catalog, topN int, outputPath string) error {
	if topN <= 0 {
		topN = DefaultTopPatterns
	}
	top := set.Top(topN)

	// Reversed so the strongest pattern ends up on top of the horizontal chart.
	points := make([]DataPoint, len(top))
	for i, pattern := range top {
		points[len(top)-1-i] = DataPoint{
			Label: PatternLabel(pattern, catalog),
			Value: float64(pattern.Support),
		}
	}

	config := DefaultChartConfig()
	config.Title = "Pick Patterns"
	config.Subtitle = fmt.Sprintf("Top %d of %d by support", len(top), set.Len())
	config.SeriesName = "Support"
	config.Horizontal = true
	config.Height = fmt.Sprintf("%dpx", 120+30*len(top))
	return RenderBarChart(points, config, outputPath)
}

// PatternLabel renders a pattern as hero names joined in pick order.
func PatternLabel(pattern recommend.Pattern, catalog *recommend.Catalog) string {
	names := make([]string, len(pattern.Items))
	for i, id := range pattern.Items {
		names[i] = catalog.DisplayName(id)
	}
	return strings.Join(names, " > ")
}

// OpenInBrowser opens the given file path in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
