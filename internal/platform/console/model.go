package console

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/narrator/internal/domain"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))
)

type model struct {
	host  *Host
	input textinput.Model
	keys  keyMap
	width int
}

func newModel(h *Host) model {
	return model{host: h, input: newInput(), keys: defaultKeys}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle("narrator"))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.host.dispatch(eventFromKey(msg), func() {
			if msg.Type == tea.KeyEnter {
				// tea.Println runs outside Update so it won't deadlock on msgs.
				cmd = tea.Println(hintStyle.Render("  submitted: ") + m.input.Value())
				m.input.Reset()
				return
			}
			m.input, cmd = m.input.Update(msg)
		})
		m.host.setText(m.input.Value())
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		const promptLen = len("narrator> ")
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("narrator console"))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(hintStyle.Render("F1 reads the field · enter submits · " + m.keys.Quit.Help().Key + " quits"))
	return b.String()
}

// eventFromKey maps a Bubble Tea key onto the virtual-key space.
func eventFromKey(msg tea.KeyMsg) domain.KeyEvent {
	var ev domain.KeyEvent
	switch msg.Type {
	case tea.KeyEnter:
		ev.Code = domain.KeyReturn
	case tea.KeySpace:
		ev.Code = domain.KeySpace
	case tea.KeyBackspace:
		ev.Code = domain.KeyBack
	case tea.KeyEsc:
		ev.Code = domain.KeyEscape
	case tea.KeyTab:
		ev.Code = domain.KeyTab
	case tea.KeyDelete:
		ev.Code = domain.KeyDelete
	case tea.KeyUp:
		ev.Code = domain.KeyUp
	case tea.KeyDown:
		ev.Code = domain.KeyDown
	case tea.KeyLeft:
		ev.Code = domain.KeyLeft
	case tea.KeyRight:
		ev.Code = domain.KeyRight
	case tea.KeyHome:
		ev.Code = domain.KeyHome
	case tea.KeyEnd:
		ev.Code = domain.KeyEnd
	case tea.KeyPgUp:
		ev.Code = domain.KeyPrior
	case tea.KeyPgDown:
		ev.Code = domain.KeyNext
	case tea.KeyInsert:
		ev.Code = domain.KeyInsert
	case tea.KeyF1:
		ev.Code = domain.KeyF1
	case tea.KeyRunes:
		ev.Typed = string(msg.Runes)
	}
	if msg.Alt {
		ev.State.SetDown(domain.KeyMenu, true)
		ev.SysKey = true
	}
	return ev
}
