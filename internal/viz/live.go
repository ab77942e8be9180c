package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/tensegrity/internal/energy"
	"github.com/san-kum/tensegrity/internal/integrator"
	"github.com/san-kum/tensegrity/internal/physics"
	"github.com/san-kum/tensegrity/internal/structure"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model steps a structure in real time and renders it as a rotating
// wireframe with an energy readout.
type Model struct {
	name  string
	build func() (*structure.Structure, error)

	st    *structure.Structure
	asm   *physics.Assembler
	integ integrator.Integrator

	t, dt    float64
	step     int
	substeps int

	canvas  *Canvas
	camera  *Camera
	scale   float64
	running bool

	auditor       *energy.Auditor
	current       energy.Triple
	drift         float64
	energyHistory []float64
	overloads     int
	buildErr      error
}

// NewModel builds the initial structure and visualization state. The
// build function is invoked again on reset.
func NewModel(name string, build func() (*structure.Structure, error), dt float64) Model {
	m := Model{
		name:          name,
		build:         build,
		dt:            dt,
		substeps:      8,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		scale:         0.6,
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
	}
	m.camera.RotateX(0.3)
	m.rebuild()
	return m
}

func (m *Model) rebuild() {
	st, err := m.build()
	if err != nil {
		m.buildErr = err
		return
	}
	m.st = st
	m.asm = physics.NewAssembler()
	m.integ = integrator.NewVerlet()
	m.t = 0
	m.step = 0
	m.overloads = 0
	m.energyHistory = m.energyHistory[:0]

	integrator.Prime(st, m.asm, 0)
	m.current = energy.Energies(st)
	m.auditor = &energy.Auditor{}
	m.drift = m.auditor.Observe(m.current)
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.rebuild()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running && m.buildErr == nil {
			m.advance()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// advance runs a few fixed steps per frame so the display keeps up
// with small dt values.
func (m *Model) advance() {
	for i := 0; i < m.substeps; i++ {
		over := m.integ.Step(m.st, m.asm, m.t, m.dt)
		m.overloads += len(over)
		m.t += m.dt
		m.step++
	}

	m.current = energy.Energies(m.st)
	m.drift = m.auditor.Observe(m.current)
	m.energyHistory = append(m.energyHistory, m.current.Total())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

// View renders the wireframe and the stats sidebar.
func (m Model) View() string {
	if m.buildErr != nil {
		return alertStyle.Render(fmt.Sprintf("build failed: %v", m.buildErr)) + "\n"
	}

	m.canvas.Clear()
	wf := StructureWireframe(m.st, m.scale)
	Render(m.canvas, wf, m.camera)
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Total energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.step)) + "\n")
	s.WriteString(labelStyle.Render("Kinetic") + valueStyle.Render(fmt.Sprintf("%.4f J", m.current.Kinetic)) + "\n")
	s.WriteString(labelStyle.Render("Gravitational") + valueStyle.Render(fmt.Sprintf("%.4f J", m.current.Gravitational)) + "\n")
	s.WriteString(labelStyle.Render("Elastic") + valueStyle.Render(fmt.Sprintf("%.4f J", m.current.Elastic)) + "\n")
	s.WriteString(labelStyle.Render("Total") + valueStyle.Render(fmt.Sprintf("%.4f J", m.current.Total())) + "\n")
	s.WriteString(labelStyle.Render("Drift") + valueStyle.Render(fmt.Sprintf("%.2e", m.drift)) + "\n")
	if m.overloads > 0 {
		s.WriteString(labelStyle.Render("Overloads") + alertStyle.Render(fmt.Sprintf("%d", m.overloads)) + "\n")
	}

	taut, slack := 0, 0
	for _, mem := range m.st.Members {
		if mem.Active() {
			taut++
		} else {
			slack++
		}
	}
	s.WriteString(labelStyle.Render("Members") + valueStyle.Render(fmt.Sprintf("%d taut / %d slack", taut, slack)) + "\n")

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Rebuild Q:Quit\nX/Y/Z:Rotate +/-:Zoom"))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
