// Package viz renders a live view of the flow: the three couplings
// advanced at a fixed rate in ln(mu), plotted as rolling histories.
package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rgflow/internal/flow"
	"github.com/san-kum/rgflow/internal/integrators"
)

const (
	historyCapacity = 240
	graphWidth      = 70
	graphHeight     = 7
	substeps        = 4
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	divergedSty = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

type TickMsg time.Time

// Model holds the stepping state and history buffers for the viewer.
type Model struct {
	field     *flow.Field
	stepper   *integrators.RK4
	initial   flow.Coupling
	point     flow.Coupling
	logMu     float64
	h         float64
	blowUp    float64
	running   bool
	diverged  bool
	histories [3][]float64
	frameRate int
}

func NewModel(field *flow.Field, init flow.Coupling, h, blowUp float64, frameRate int) Model {
	return Model{
		field:     field,
		stepper:   integrators.NewRK4(),
		initial:   init,
		point:     init,
		h:         h,
		blowUp:    blowUp,
		running:   true,
		frameRate: frameRate,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.point = m.initial
			m.logMu = 0
			m.diverged = false
			m.running = true
			for i := range m.histories {
				m.histories[i] = nil
			}
		}
		return m, nil

	case TickMsg:
		if m.running && !m.diverged {
			for i := 0; i < substeps; i++ {
				m.point = m.stepper.Step(m.field, m.point, m.h)
				m.logMu += m.h
				if !m.point.IsValid() || m.point.MaxAbs() > m.blowUp {
					m.diverged = true
					m.running = false
					break
				}
			}
			if !m.diverged {
				for i := range m.histories {
					m.histories[i] = append(m.histories[i], m.point[i])
					if len(m.histories[i]) > historyCapacity {
						m.histories[i] = m.histories[i][1:]
					}
				}
			}
		}
		return m, m.tick()
	}

	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("rgflow live"))
	sb.WriteString("\n")

	for i := range m.histories {
		if len(m.histories[i]) >= 2 {
			graph := asciigraph.Plot(m.histories[i],
				asciigraph.Height(graphHeight),
				asciigraph.Width(graphWidth),
				asciigraph.Caption(flow.Names[i]),
			)
			sb.WriteString(graphStyle.Render(graph))
			sb.WriteString("\n")
		}
	}

	var stats strings.Builder
	stats.WriteString(labelStyle.Render("ln(mu)") + valueStyle.Render(fmt.Sprintf("%.4f", m.logMu)) + "\n")
	for i, name := range flow.Names {
		stats.WriteString(labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%+.6f", m.point[i])) + "\n")
	}
	d := m.field.Derive(m.point)
	stats.WriteString(labelStyle.Render("|flow|") + valueStyle.Render(fmt.Sprintf("%.3e", d.Norm())))
	if m.diverged {
		stats.WriteString("\n" + divergedSty.Render("diverged"))
	} else if !m.running {
		stats.WriteString("\n" + valueStyle.Render("paused"))
	}
	sb.WriteString(statsStyle.Render(stats.String()))

	sb.WriteString(helpStyle.Render("\nspace pause · r reset · q quit"))

	return sb.String()
}
