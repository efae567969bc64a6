// Package viz renders live terminal views of the running simulations.
package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mtovar/labsim/internal/dynamo"
	"github.com/mtovar/labsim/internal/integrators"
	"github.com/mtovar/labsim/internal/pendulum"
)

const (
	canvasCols = 56
	canvasRows = 20
	historyCap = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// pendulumView animates the swing in real time, stepping several
// integrator substeps per frame so wall-clock and simulated time
// roughly agree.
type pendulumView struct {
	params  pendulum.Params
	model   *pendulum.Model
	stepper dynamo.Stepper
	state   dynamo.State
	t       float64
	running bool
	canvas  *Canvas
	energy  []float64
	trail   [][2]int
}

func newPendulumView(p pendulum.Params) pendulumView {
	return pendulumView{
		params:  p,
		model:   pendulum.NewModel(p),
		stepper: integrators.NewRK4(),
		state:   dynamo.State{p.InitialAngle, p.InitialOmega},
		running: true,
		canvas:  NewCanvas(canvasCols, canvasRows),
		energy:  make([]float64, 0, historyCap),
		trail:   make([][2]int, 0, 120),
	}
}

func (v pendulumView) Init() tea.Cmd { return tick() }

func (v pendulumView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return v, tea.Quit
		case " ":
			v.running = !v.running
		case "r":
			v.state = dynamo.State{v.params.InitialAngle, v.params.InitialOmega}
			v.t = 0
			v.energy = v.energy[:0]
			v.trail = v.trail[:0]
		}
	case tickMsg:
		if v.running {
			steps := int(math.Max(1, (1.0/60.0)/v.params.Dt))
			for i := 0; i < steps; i++ {
				v.state = v.stepper.Step(v.model, v.state, v.t, v.params.Dt)
				v.t += v.params.Dt
			}
			v.energy = append(v.energy, v.model.Energy(v.state))
			if len(v.energy) > historyCap {
				v.energy = v.energy[1:]
			}
			bx, by := v.bobDot()
			v.trail = append(v.trail, [2]int{bx, by})
			if len(v.trail) > 120 {
				v.trail = v.trail[1:]
			}
		}
		return v, tick()
	}
	return v, nil
}

// bobDot maps the bob position to canvas dot coordinates. Screen y
// grows downward, so the rest position hangs below the pivot.
func (v pendulumView) bobDot() (int, int) {
	cw, ch := v.canvas.DotWidth(), v.canvas.DotHeight()
	px, py := cw/2, ch/6
	radius := float64(ch) * 0.65
	theta := v.state[0]
	return px + int(radius*math.Sin(theta)), py + int(radius*math.Cos(theta))
}

func (v pendulumView) View() string {
	v.canvas.Clear()
	cw, ch := v.canvas.DotWidth(), v.canvas.DotHeight()
	px, py := cw/2, ch/6
	bx, by := v.bobDot()

	for _, p := range v.trail {
		v.canvas.Dot(p[0], p[1])
	}

	v.canvas.Line(px, py, bx, by)
	v.canvas.Circle(bx, by, 3)
	v.canvas.Dot(px, py)

	var s strings.Builder
	s.WriteString(headerStyle.Render("PENDULUM") + "\n")
	if v.running {
		s.WriteString("RUNNING\n\n")
	} else {
		s.WriteString("PAUSED\n\n")
	}
	if len(v.energy) > 1 {
		chart := asciigraph.Plot(v.energy, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", v.t)) + "\n")
	s.WriteString(labelStyle.Render("Angle") + valueStyle.Render(fmt.Sprintf("%.3f rad", v.state[0])) + "\n")
	s.WriteString(labelStyle.Render("Omega") + valueStyle.Render(fmt.Sprintf("%.3f rad/s", v.state[1])) + "\n")
	s.WriteString(labelStyle.Render("Length") + valueStyle.Render(fmt.Sprintf("%.2f m", v.params.Length)) + "\n")
	s.WriteString(labelStyle.Render("T (small)") + valueStyle.Render(fmt.Sprintf("%.3f s", pendulum.SmallAnglePeriod(v.params.Length, v.params.Gravity))) + "\n")
	s.WriteString(helpStyle.Render("\nSP:Pause  R:Reset  Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(v.canvas.String()),
		statsStyle.Render(s.String()))
}

// RunPendulum runs the interactive pendulum view until the user quits.
func RunPendulum(p pendulum.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := tea.NewProgram(newPendulumView(p)).Run()
	return err
}
