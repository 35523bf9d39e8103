package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wicstas/llc"
)

var (
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1)
)

type replModel struct {
	program  *llc.Program
	viewport viewport.Model
	input    textinput.Model
	history  []string
	ready    bool
}

func newREPLModel() replModel {
	program := llc.NewProgram()
	bindBuiltins(program)

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Focus()

	return replModel{
		program:  program,
		viewport: viewport.New(80, 20),
		input:    ti,
		history:  []string{"llc repl, ctrl+d to quit"},
	}
}

func runREPL() error {
	p := tea.NewProgram(newREPLModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			m.history = append(m.history, "> "+line)
			m.history = append(m.history, m.eval(line)...)
			m.refresh()
			return m, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// eval feeds one line through the program; statements missing their
// semicolon get one appended.
func (m replModel) eval(line string) []string {
	chunk := line
	if !strings.HasSuffix(chunk, ";") && !strings.HasSuffix(chunk, "}") {
		chunk += ";"
	}
	out, has, err := m.program.Eval(chunk)
	if err != nil {
		return strings.Split(errStyle.Render(m.program.RenderError(err)), "\n")
	}
	if !has {
		return nil
	}
	return []string{resultStyle.Render(out)}
}

func (m *replModel) refresh() {
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m replModel) View() string {
	if !m.ready {
		return "starting"
	}
	return fmt.Sprintf("%s\n%s", m.viewport.View(), promptStyle.Render(m.input.View()))
}
