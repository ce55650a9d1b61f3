package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor  = lipgloss.Color("#7D56F4")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	haltStyle   = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)
	headStyle   = lipgloss.NewStyle().Reverse(true).Bold(true)
	tapeStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

// DefaultTickInterval is the delay between two steps while auto-running.
const DefaultTickInterval = 50 * time.Millisecond

// historySize bounds the trace lines kept on screen.
const historySize = 8

type stepperKeys struct {
	Step  key.Binding
	Run   key.Binding
	Reset key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k stepperKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Step, k.Run, k.Reset, k.Help, k.Quit}
}

func (k stepperKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Step, k.Run}, {k.Reset, k.Help, k.Quit}}
}

var keys = stepperKeys{
	Step: key.NewBinding(
		key.WithKeys(" ", "n", "right"),
		key.WithHelp("space/n", "step"),
	),
	Run: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "run/pause"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0", "backspace"),
		key.WithHelp("0", "reset"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// tickMsg drives auto-run. Ticks from an earlier run generation are dropped.
type tickMsg struct {
	gen int
}

// Stepper is an interactive single-step view of a machine.
type Stepper struct {
	machine     *runtime.Machine
	name, input string
	left, right int
	interval    time.Duration

	running  bool
	gen      int
	quitting bool
	err      error
	history  []string
	help     help.Model
}

// NewStepper creates the model for machine, which must already be loaded with input.
// left and right size the tape window around the head.
func NewStepper(m *runtime.Machine, name, input string, left, right int) Stepper {
	return Stepper{
		machine:  m,
		name:     name,
		input:    input,
		left:     left,
		right:    right,
		interval: DefaultTickInterval,
		help:     help.New(),
	}
}

// WithInterval returns a copy of s that auto-runs one step every d.
func (s Stepper) WithInterval(d time.Duration) Stepper {
	s.interval = d
	return s
}

// Err returns the error that stopped the machine, if any.
func (s Stepper) Err() error { return s.err }

// Running reports whether auto-run is active.
func (s Stepper) Running() bool { return s.running }

func (s Stepper) Init() tea.Cmd {
	return nil
}

func (s Stepper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.help.Width = msg.Width
		return s, nil

	case tickMsg:
		if !s.running || msg.gen != s.gen {
			return s, nil
		}
		s = s.step()
		if !s.running {
			return s, nil
		}
		return s, s.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			s.quitting = true
			return s, tea.Quit

		case key.Matches(msg, keys.Help):
			s.help.ShowAll = !s.help.ShowAll
			return s, nil

		case key.Matches(msg, keys.Reset):
			s.machine.Reset(s.input)
			s.running, s.err, s.history = false, nil, nil
			s.gen++
			return s, nil

		case key.Matches(msg, keys.Step):
			s.running = false
			s.gen++
			return s.step(), nil

		case key.Matches(msg, keys.Run):
			s.gen++
			if s.running || s.machine.Halted() || s.err != nil {
				s.running = false
				return s, nil
			}
			s.running = true
			return s, s.tick()
		}
	}
	return s, nil
}

// step advances the machine once, recording the rule or the failure.
func (s Stepper) step() Stepper {
	if s.err != nil {
		s.running = false
		return s
	}
	rule, err := s.machine.Step()
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyHalted) {
			s.err = err
		}
		s.running = false
		return s
	}

	line := fmt.Sprintf("%6d  %s", s.machine.Steps(), rule.String())
	s.history = append(s.history, line)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
	if s.machine.Halted() {
		s.running = false
	}
	return s
}

func (s Stepper) tick() tea.Cmd {
	gen := s.gen
	return tea.Tick(s.interval, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (s Stepper) View() string {
	if s.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(s.name) + mutedStyle.Render(fmt.Sprintf("  input %q", s.input)) + "\n\n")

	status := fmt.Sprintf("state %s  steps %d", s.machine.State(), s.machine.Steps())
	switch {
	case s.err != nil:
		b.WriteString(errorStyle.Render(status + "  stopped: " + s.err.Error()))
	case s.machine.Halted():
		b.WriteString(haltStyle.Render(status + "  halted"))
	case s.running:
		b.WriteString(status + mutedStyle.Render("  running"))
	default:
		b.WriteString(status)
	}
	b.WriteString("\n")

	b.WriteString(tapeStyle.Render(s.renderWindow()) + "\n")

	for _, line := range s.history {
		b.WriteString(mutedStyle.Render(line) + "\n")
	}
	if next, ok := s.machine.SelectNextRule(); ok && !s.machine.Halted() && s.err == nil {
		b.WriteString(fmt.Sprintf("  next  %s\n", next.String()))
	}

	b.WriteString("\n" + s.help.View(keys))
	return b.String()
}

// renderWindow highlights the head cell of the tape window.
func (s Stepper) renderWindow() string {
	cells := []rune(s.machine.Window(s.left, s.right))
	if s.left >= len(cells) {
		return string(cells)
	}
	return string(cells[:s.left]) + headStyle.Render(string(cells[s.left])) + string(cells[s.left+1:])
}
