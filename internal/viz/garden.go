package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/mtovar/labsim/internal/rng"
	"github.com/mtovar/labsim/internal/tomato"
)

var (
	stemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	fruitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	soilStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("94"))
)

type dayMsg time.Time

func nextDay() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg { return dayMsg(t) })
}

// gardenView plays back a full season one day per frame. The whole run
// is simulated up front so playback stays deterministic under pause
// and reset.
type gardenView struct {
	params  tomato.Params
	days    []tomato.DayState
	cursor  int
	running bool
}

func newGardenView(params tomato.Params, seed uint32) (gardenView, error) {
	var src *rng.Source
	if params.TempJitterC > 0 {
		src = rng.New(seed)
	}
	days, err := tomato.Simulate(params, src)
	if err != nil {
		return gardenView{}, err
	}
	return gardenView{params: params, days: days, running: true}, nil
}

func (g gardenView) Init() tea.Cmd { return nextDay() }

func (g gardenView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return g, tea.Quit
		case " ":
			g.running = !g.running
		case "r":
			g.cursor = 0
			g.running = true
		}
	case dayMsg:
		if g.running && g.cursor < len(g.days)-1 {
			g.cursor++
		}
		return g, nextDay()
	}
	return g, nil
}

// plant renders an ASCII plant scaled to the day's height, leaves
// alternating off the stem, fruit marks near the top once set.
func plant(day tomato.DayState, maxRows int) string {
	rows := int(day.HeightCm / 240.0 * float64(maxRows))
	if rows > maxRows {
		rows = maxRows
	}
	const width = 21
	center := width / 2

	lines := make([]string, 0, maxRows+1)
	for i := 0; i < maxRows-rows; i++ {
		lines = append(lines, strings.Repeat(" ", width))
	}
	fruitLeft := day.Fruits
	for i := rows; i > 0; i-- {
		row := []byte(strings.Repeat(" ", width))
		row[center] = '|'
		if i%2 == 0 && day.Leaves > 0 {
			row[center-1] = '/'
			if i%4 == 0 {
				row[center-2] = '-'
			}
		} else if day.Leaves > 0 {
			row[center+1] = '\\'
			if i%4 == 1 {
				row[center+2] = '-'
			}
		}
		line := string(row)
		if fruitLeft > 0 && i > rows*2/3 {
			line = strings.Replace(line, "-", fruitStyle.Render("o"), 1)
			fruitLeft -= 2
		}
		lines = append(lines, stemStyle.Render(line))
	}
	lines = append(lines, soilStyle.Render(strings.Repeat("▔", width)))
	return strings.Join(lines, "\n")
}

func (g gardenView) View() string {
	day := g.days[g.cursor]

	var s strings.Builder
	s.WriteString(headerStyle.Render("TOMATO") + "\n")
	status := "GROWING"
	if !g.running {
		status = "PAUSED"
	} else if g.cursor == len(g.days)-1 {
		status = "SEASON END"
	}
	s.WriteString(status + "\n\n")

	heights := make([]float64, 0, g.cursor+1)
	for _, d := range g.days[:g.cursor+1] {
		heights = append(heights, d.HeightCm)
	}
	if len(heights) > 1 {
		chart := asciigraph.Plot(heights, asciigraph.Height(4), asciigraph.Width(28), asciigraph.Caption("Height cm"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Day") + valueStyle.Render(fmt.Sprintf("%d / %d", day.Day, len(g.days))) + "\n")
	s.WriteString(labelStyle.Render("Stage") + valueStyle.Render(day.Stage.String()) + "\n")
	s.WriteString(labelStyle.Render("GDD") + valueStyle.Render(fmt.Sprintf("%.1f", day.GDD)) + "\n")
	s.WriteString(labelStyle.Render("Height") + valueStyle.Render(fmt.Sprintf("%.1f cm", day.HeightCm)) + "\n")
	s.WriteString(labelStyle.Render("Leaves") + valueStyle.Render(fmt.Sprintf("%.0f", day.Leaves)) + "\n")
	s.WriteString(labelStyle.Render("Fruits") + valueStyle.Render(fmt.Sprintf("%.1f", day.Fruits)) + "\n")
	s.WriteString(labelStyle.Render("Health") + valueStyle.Render(fmt.Sprintf("%.2f", day.Health)) + "\n")
	s.WriteString(labelStyle.Render("Germination") + valueStyle.Render(fmt.Sprintf("%.0f%%", day.GerminationPct)) + "\n")
	s.WriteString(helpStyle.Render("\nSP:Pause  R:Replay  Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(plant(day, 18)),
		statsStyle.Render(s.String()))
}

// RunTomato plays a season of growth until the user quits.
func RunTomato(params tomato.Params, seed uint32) error {
	g, err := newGardenView(params, seed)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(g).Run()
	return err
}
