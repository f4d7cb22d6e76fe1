package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/opsdeck/opsdeck/internal/models"
	"github.com/opsdeck/opsdeck/internal/ui/styles"
)

// BandGauge renders current spend against the warning and critical
// thresholds. The bar scale runs to the critical threshold so the
// warning mark always lands inside the bar.
type BandGauge struct {
	thresholds models.CostThresholds
}

// NewBandGauge creates a gauge for the given thresholds.
func NewBandGauge(thresholds models.CostThresholds) BandGauge {
	return BandGauge{thresholds: thresholds}
}

// View renders the gauge with the spend figure and band label.
func (g BandGauge) View(spend float64, width int) string {
	band := models.EvaluateCostBand(spend, g.thresholds)

	labelWidth := 12
	bandWidth := 10
	barWidth := width - labelWidth - bandWidth - 6
	if barWidth < 10 {
		barWidth = 10
	}

	scale := g.thresholds.Critical
	if scale <= 0 {
		scale = 1
	}
	fillPercent := spend / scale
	if fillPercent > 1 {
		fillPercent = 1
	}
	if fillPercent < 0 {
		fillPercent = 0
	}

	filled := int(fillPercent * float64(barWidth))
	warnMark := -1
	if g.thresholds.Warning > 0 && g.thresholds.Warning < scale {
		warnMark = int(g.thresholds.Warning / scale * float64(barWidth))
	}

	bandStyle := styles.GetBandStyle(band)

	var chars []string
	for i := 0; i < barWidth; i++ {
		switch {
		case i == warnMark:
			chars = append(chars, styles.WarningTextStyle.Render("┃"))
		case i < filled:
			chars = append(chars, bandStyle.Render("█"))
		default:
			chars = append(chars, styles.SubtleStyle.Render("░"))
		}
	}
	bar := strings.Join(chars, "")

	spendStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(labelWidth).
		Render(fmt.Sprintf("$%.2f", spend))

	bandStr := bandStyle.
		Width(bandWidth).
		Align(lipgloss.Right).
		Render(band.String())

	return fmt.Sprintf("%s [%s] %s", spendStr, bar, bandStr)
}

// ViewCompact renders only the band label, styled.
func (g BandGauge) ViewCompact(spend float64) string {
	band := models.EvaluateCostBand(spend, g.thresholds)
	return styles.GetBandStyle(band).Render(band.String())
}

// RenderGradientBar renders a percentage bar with gradient coloring.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := int(float64(width) * percent / 100)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	var barChars []string
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor("#51cf66", "#ff6b6b", t)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			barChars = append(barChars, style.Render("█"))
		} else {
			style := lipgloss.NewStyle().Foreground(styles.Subtle)
			barChars = append(barChars, style.Render("░"))
		}
	}

	return strings.Join(barChars, "")
}

// SimpleMeter renders a labeled percentage bar, used for CPU and memory
// figures on the infrastructure tab.
func SimpleMeter(percent float64, label string, width int) string {
	labelWidth := len(label) + 1
	percentWidth := 6
	barWidth := width - labelWidth - percentWidth - 4

	if barWidth < 5 {
		barWidth = 5
	}

	bar := RenderGradientBar(percent, barWidth)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	var percentStyle lipgloss.Style
	switch {
	case percent >= 90:
		percentStyle = styles.ErrorTextStyle
	case percent >= 70:
		percentStyle = styles.WarningTextStyle
	default:
		percentStyle = styles.SuccessTextStyle
	}
	percentStr := percentStyle.
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
