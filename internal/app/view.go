package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"candleview/internal/domain"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("236"))
	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("11")).
			Bold(true).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	inputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	upStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

const helpText = "←/h →/l move  +/- zoom  s symbol  i interval  c crosses  t trends  e ema  m min domain  d detail  q quit"

// View renders the chart, the status bar and the info line.
func (m *Model) View() string {
	s := m.store.State()
	now := m.chart.Ctx.Now()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.chart.Render(s.Indicators, now),
		m.statusBar(s.ViewState),
		m.infoLine(),
	)
}

func (m *Model) statusBar(view domain.ViewState) string {
	left := symbolStyle.Render(view.Symbol + " " + string(view.Interval))
	parts := []string{
		visibleWindow(view),
		fmt.Sprintf("zoom %.2fx", m.chart.Broadcaster.Transform().K),
		m.chart.Broadcaster.State().String(),
	}
	if m.lastErr != nil {
		parts = append(parts, errorStyle.Render(describe(m.lastErr)))
	} else if m.status != "" {
		parts = append(parts, m.status)
	}
	body := statusStyle.Render(" " + strings.Join(parts, " │ ") + " ")
	bar := lipgloss.JoinHorizontal(lipgloss.Top, left, body)
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(bar)
}

// infoLine shows the min-domain input, the candle detail or the key help.
func (m *Model) infoLine() string {
	switch {
	case m.input != nil:
		return inputStyle.Render("min domain: " + *m.input + "▏")
	case m.detail:
		c, ok := m.chart.CandleAt(m.store.State().Indicators, m.pointerX, m.chart.Ctx.Now())
		if !ok {
			return helpStyle.Render("no candle under pointer")
		}
		return candleDetail(c)
	default:
		return helpStyle.Render(helpText)
	}
}

func candleDetail(c domain.Candle) string {
	style := downStyle
	if c.IsBullish() {
		style = upStyle
	}
	return style.Render(fmt.Sprintf("%s  O %s  H %s  L %s  C %s  V %s",
		c.Time().Format("2006-01-02 15:04"),
		formatPrice(c.Open), formatPrice(c.High), formatPrice(c.Low), formatPrice(c.Close),
		formatPrice(c.Volume),
	))
}

func formatPrice(v float64) string {
	return fmt.Sprintf("%.8g", v)
}
