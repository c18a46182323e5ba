package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// transcriptSize is how many lines of conversation stay on screen.
const transcriptSize = 15

type speaker int

const (
	speakerUser speaker = iota
	speakerBot
	speakerError
)

type line struct {
	who  speaker
	text string
}

// replyMsg carries a message the bot sent.
type replyMsg struct{ text string }

// handledMsg reports that the bot finished with one input line.
type handledMsg struct{ err error }

type model struct {
	title    string
	userName string
	botName  string

	input  []rune
	cursor int
	lines  []line
	busy   int

	// submit turns an input line into the command that hands it to the bot.
	submit func(text string) tea.Cmd
}

func newModel(title, userName, botName string, submit func(string) tea.Cmd) model {
	return model{title: title, userName: userName, botName: botName, submit: submit}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.KeyMsg:
		switch v.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			text := strings.TrimSpace(string(m.input))
			m.input = nil
			m.cursor = 0
			if text == "" {
				return m, nil
			}
			if text == "quit" || text == "exit" {
				return m, tea.Quit
			}
			m.push(line{speakerUser, text})
			m.busy++
			return m, m.submit(text)

		case tea.KeyBackspace:
			if m.cursor > 0 {
				m.input = append(m.input[:m.cursor-1:m.cursor-1], m.input[m.cursor:]...)
				m.cursor--
			}
			return m, nil

		case tea.KeyLeft:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case tea.KeyRight:
			if m.cursor < len(m.input) {
				m.cursor++
			}
			return m, nil

		case tea.KeySpace:
			m.insert([]rune{' '})
			return m, nil

		case tea.KeyRunes:
			m.insert(v.Runes)
			return m, nil
		}

	case replyMsg:
		m.push(line{speakerBot, v.text})
		return m, nil

	case handledMsg:
		if m.busy > 0 {
			m.busy--
		}
		if v.err != nil {
			m.push(line{speakerError, v.err.Error()})
		}
		return m, nil
	}
	return m, nil
}

func (m *model) insert(rs []rune) {
	tail := append([]rune(nil), m.input[m.cursor:]...)
	m.input = append(append(m.input[:m.cursor], rs...), tail...)
	m.cursor += len(rs)
}

func (m *model) push(l line) {
	m.lines = append(m.lines, l)
	if len(m.lines) > transcriptSize {
		m.lines = m.lines[len(m.lines)-transcriptSize:]
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(styleHeader.Render(m.title))
	b.WriteString("\n\n")

	if len(m.lines) == 0 {
		b.WriteString(styleHint.Render("  (say something, or try /help)"))
		b.WriteString("\n")
	}
	for _, l := range m.lines {
		switch l.who {
		case speakerUser:
			b.WriteString(styleUser.Render(m.userName + ":"))
		case speakerBot:
			b.WriteString(styleBot.Render(m.botName + ":"))
		default:
			b.WriteString(styleError.Render("error:"))
		}
		// Multi-line replies such as haikus stay aligned under the name.
		b.WriteString(" " + styleText.Render(strings.ReplaceAll(l.text, "\n", "\n    ")))
		b.WriteString("\n")
	}

	cursor := min(m.cursor, len(m.input))
	input := string(m.input[:cursor]) + "_" + string(m.input[cursor:])
	status := ""
	if m.busy > 0 {
		status = styleHint.Render(fmt.Sprintf("  (%s is thinking)", m.botName))
	}
	b.WriteString(styleInput.Render("> " + input + status))
	b.WriteString("\n")
	b.WriteString(styleHint.Render("enter: send · esc: quit"))
	return b.String()
}
