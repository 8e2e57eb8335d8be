package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/neuroanim/internal/codec"
)

const (
	canvasWidth  = 60
	canvasHeight = 24
	tickRate     = time.Second / 30
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Player steps through the frames of an animation payload, drawing the
// morphology from records colored by each point's voltage.
type Player struct {
	title    string
	payload  *codec.Payload
	scene    *Scene
	ramp     Ramp
	canvas   *Canvas
	camera   *Camera
	frame    int
	running  bool
	selected int
	showHelp bool
}

func NewPlayer(title string, p *codec.Payload, records []codec.Record) Player {
	return Player{
		title:   title,
		payload: p,
		scene:   NewScene(records),
		ramp:    NewRamp(p.MaterialConfig),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		camera:  NewCamera(),
		running: true,
	}
}

// Frames is the number of frames in the payload.
func (m Player) Frames() int { return len(m.payload.Timepoints) }

func (m Player) Frame() int { return m.frame }

// Selected is the payload section shown in the trace panel, false when the
// payload has no sections.
func (m Player) Selected() (codec.SectionFrames, bool) {
	if len(m.payload.Sections) == 0 {
		return codec.SectionFrames{}, false
	}
	return m.payload.Sections[m.selected], true
}

func (m Player) Init() tea.Cmd {
	return tick()
}

func (m Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "home":
			m.frame = 0
		case "tab":
			if n := len(m.payload.Sections); n > 0 {
				m.selected = (m.selected + 1) % n
			}
		case "shift+tab":
			if n := len(m.payload.Sections); n > 0 {
				m.selected = (m.selected + n - 1) % n
			}
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
		case "r":
			m.camera.Reset()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.Frames() > 0 {
			m.frame = (m.frame + 1) % m.Frames()
		}
		return m, tick()
	}
	return m, nil
}

// scrub pauses playback and moves by one frame.
func (m *Player) scrub(dir int) {
	m.running = false
	if n := m.Frames(); n > 0 {
		m.frame = (m.frame + dir + n) % n
	}
}

func (m Player) View() string {
	m.canvas.Clear()
	m.scene.Draw(m.canvas, m.camera, m.ramp, m.frame)
	canvasView := canvasStyle.Render(m.canvas.Render(m.ramp))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("PLAYING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	n := m.Frames()
	t := 0.0
	if m.frame < n {
		t = m.payload.Timepoints[m.frame]
	}
	s.WriteString(labelStyle.Render("Frame") + valueStyle.Render(fmt.Sprintf("%d/%d", m.frame+1, n)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2f ms", t)) + "\n")
	if n > 1 {
		s.WriteString(ProgressBar(float64(m.frame)/float64(n-1), 30) + "\n")
	}

	if sec, ok := m.Selected(); ok {
		s.WriteString("\n" + activeStyle.Render("> "+sec.Name) + Subtle.Render(" ("+sec.Type+")") + "\n")
		if m.frame < len(sec.VoltageFrames) {
			v := sec.VoltageFrames[m.frame]
			swatch := lipgloss.NewStyle().Foreground(m.ramp.Color(v)).Render("██")
			s.WriteString(labelStyle.Render("Voltage") + valueStyle.Render(fmt.Sprintf("%.2f mV ", v)) + swatch + "\n")
		}
		s.WriteString(labelStyle.Render("Range") + valueStyle.Render(fmt.Sprintf("%.1f..%.1f mV", sec.VoltageRange.Min, sec.VoltageRange.Max)) + "\n")
		if len(sec.VoltageFrames) > 1 {
			chart := asciigraph.Plot(sec.VoltageFrames, asciigraph.Height(6), asciigraph.Width(30), asciigraph.Caption("mV"))
			s.WriteString(graphStyle.Render(chart) + "\n")
			s.WriteString(SparklineChart(sec.VoltageFrames, 30) + "\n")
		}
	}

	s.WriteString("\n" + m.legend() + "\n")
	s.WriteString(helpStyle.Render("SP:Pause [ ]:Scrub Tab:Section\nxyz:Rotate +/-:Zoom R:Reset Q:Quit"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  [ ]      - Step one frame           ║
║  Home     - First frame              ║
║  Tab      - Next section             ║
║  x/y/z    - Rotate (shift reverses)  ║
║  + -      - Zoom                     ║
║  R        - Reset camera             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// legend shows the quantized colormap against the voltage range.
func (m Player) legend() string {
	var b strings.Builder
	b.WriteString(Subtle.Render(fmt.Sprintf("%.0f ", m.ramp.Range.Min)))
	for _, c := range m.ramp.Colors {
		b.WriteString(lipgloss.NewStyle().Foreground(c).Render("█"))
	}
	b.WriteString(Subtle.Render(fmt.Sprintf(" %.0f mV", m.ramp.Range.Max)))
	return b.String()
}

// RunPlayer runs the player full screen until the user quits.
func RunPlayer(title string, p *codec.Payload, records []codec.Record) error {
	_, err := tea.NewProgram(NewPlayer(title, p, records), tea.WithAltScreen()).Run()
	return err
}
