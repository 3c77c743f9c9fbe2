// Package tui renders a running scene in the terminal: a live particle
// scatter over the domain, per-step metric readouts and a scrolling
// energy graph.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/meshfree/internal/body"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// occupancy shading, low to high
var shades = []rune{'·', 'o', 'O', '●'}

type Model struct {
	scene    *body.Scene
	scenario string
	steps    int

	paused  bool
	done    bool
	speed   int // scene steps per frame
	err     error
	history []float64

	lastFrame time.Time
	fps       float64

	width  int
	height int
}

func NewLiveModel(scene *body.Scene, scenario string, steps int) *Model {
	return &Model{
		scene:    scene,
		scenario: scenario,
		steps:    steps,
		speed:    1,
		history:  make([]float64, 0, 120),
		width:    80,
		height:   24,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	if err := m.scene.Initialize(); err != nil {
		m.err = err
		m.done = true
		return nil
	}
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		case "+", "=":
			if m.speed < 64 {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.done {
			return m, nil
		}
		now := time.Now()
		if !m.lastFrame.IsZero() {
			if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
				m.fps = 1.0 / dt
			}
		}
		m.lastFrame = now

		if !m.paused {
			for i := 0; i < m.speed && m.scene.StepCount() < m.steps; i++ {
				if err := m.scene.Step(); err != nil {
					m.err = err
					m.done = true
					return m, nil
				}
			}
			m.recordEnergy()
			if m.scene.StepCount() >= m.steps {
				m.done = true
				return m, nil
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) recordEnergy() {
	for _, metric := range m.scene.Metrics() {
		if metric.Name() == "kinetic_energy" {
			m.history = append(m.history, metric.Value())
			if len(m.history) > 120 {
				m.history = m.history[1:]
			}
			return
		}
	}
}

func (m *Model) View() string {
	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("running")
	switch {
	case m.err != nil:
		statusIcon = red.Render("✗")
		statusText = red.Render(m.err.Error())
	case m.done:
		statusIcon = dim.Render("●")
		statusText = dim.Render("finished")
	case m.paused:
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s\n", statusIcon, cyan.Render(m.scenario), statusText))

	progress := float64(m.scene.StepCount()) / float64(m.steps)
	if progress > 1 {
		progress = 1
	}
	barWidth := 36
	filled := int(progress * float64(barWidth))
	stepStr := fmt.Sprintf("%d/%d steps", m.scene.StepCount(), m.steps)
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s  %s\n\n",
		bar, dim.Render(stepStr), dim.Render(fmt.Sprintf("%.0ffps x%d", m.fps, m.speed))))

	b.WriteString(m.renderParticles())
	b.WriteString(m.renderMetrics())

	if len(m.history) >= 2 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(4),
			asciigraph.Width(min(m.width-10, 60)),
			asciigraph.Caption("kinetic energy"),
		)
		for _, line := range strings.Split(chart, "\n") {
			b.WriteString("   " + dim.Render(line) + "\n")
		}
	}

	b.WriteString("\n" + dim.Render("   space pause   +/- speed   q quit") + "\n")
	return b.String()
}

// renderParticles bins the real particles of the body into a character
// grid over the domain bounds. Cell occupancy picks the glyph.
func (m *Model) renderParticles() string {
	cw := m.width - 8
	ch := m.height - 16
	if cw < 40 {
		cw = 40
	}
	if ch < 8 {
		ch = 8
	}

	counts := make([]int, cw*ch)
	st := m.scene.Body.Store
	bounds := m.scene.Body.Grid.Bounds()
	ext := bounds.Extent()
	pos := st.Positions()

	maxCount := 0
	for i := 0; i < st.TotalReal(); i++ {
		cx := int((pos[i].X - bounds.Min.X) / ext.X * float64(cw))
		cy := int((pos[i].Y - bounds.Min.Y) / ext.Y * float64(ch))
		if cx < 0 || cx >= cw || cy < 0 || cy >= ch {
			continue
		}
		// terminal rows grow downward
		cell := (ch-1-cy)*cw + cx
		counts[cell]++
		if counts[cell] > maxCount {
			maxCount = counts[cell]
		}
	}

	var b strings.Builder
	b.WriteString("   " + dimmer.Render("┌"+strings.Repeat("─", cw)+"┐") + "\n")
	for row := 0; row < ch; row++ {
		b.WriteString("   " + dimmer.Render("│"))
		for col := 0; col < cw; col++ {
			n := counts[row*cw+col]
			if n == 0 {
				b.WriteRune(' ')
				continue
			}
			level := 0
			if maxCount > 1 {
				level = (n - 1) * (len(shades) - 1) / maxCount
			}
			if level >= len(shades) {
				level = len(shades) - 1
			}
			b.WriteString(white.Render(string(shades[level])))
		}
		b.WriteString(dimmer.Render("│") + "\n")
	}
	b.WriteString("   " + dimmer.Render("└"+strings.Repeat("─", cw)+"┘") + "\n")
	return b.String()
}

func (m *Model) renderMetrics() string {
	ms := m.scene.Metrics()
	if len(ms) == 0 {
		return "\n"
	}
	var parts []string
	for _, metric := range ms {
		parts = append(parts, fmt.Sprintf("%s %s",
			dim.Render(metric.Name()), magenta.Render(formatValue(metric.Value()))))
	}
	return "   " + strings.Join(parts, "   ") + "\n\n"
}

func formatValue(v float64) string {
	if v != 0 && (math.Abs(v) < 1e-3 || math.Abs(v) >= 1e4) {
		return fmt.Sprintf("%.3e", v)
	}
	return fmt.Sprintf("%.4f", v)
}

// RunLive drives the model under the bubbletea runtime until the run
// completes or the user quits.
func RunLive(scene *body.Scene, scenario string, steps int) error {
	m := NewLiveModel(scene, scenario, steps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return m.err
}
