package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcosbot/marcos/internal/bot"
)

// Messenger is a terminal chat with the bot. It implements bot.Messenger
// for a single chat.
type Messenger struct {
	ChatID   int64
	ChatType string
	From     bot.User
	BotName  string

	opts []tea.ProgramOption

	mu      sync.Mutex
	program *tea.Program
	backlog []string
}

var _ bot.Messenger = (*Messenger)(nil)

// Option configures the underlying bubbletea program.
type Option func(*Messenger)

// WithIO runs the program on in/out instead of the terminal.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(m *Messenger) {
		m.opts = append(m.opts, tea.WithInput(in), tea.WithOutput(out))
	}
}

// New returns a terminal messenger for chatID.
func New(chatID int64, chatType string, opts ...Option) *Messenger {
	m := &Messenger{
		ChatID:   chatID,
		ChatType: chatType,
		From:     bot.User{ID: 3, FirstName: "you"},
		BotName:  "MarcosBot",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Messenger) Username() string { return m.BotName }

// Listen runs the terminal UI until the user quits or ctx ends. Each
// submitted line is handed to h off the UI goroutine.
func (m *Messenger) Listen(ctx context.Context, h bot.Handler) error {
	submit := func(text string) tea.Cmd {
		return func() tea.Msg {
			msg := bot.Message{ChatID: m.ChatID, ChatType: m.ChatType, From: m.From, Text: text}
			return handledMsg{err: h(ctx, msg)}
		}
	}
	title := fmt.Sprintf("Marcos · chat %d (%s)", m.ChatID, m.ChatType)
	model := newModel(title, m.From.FirstName, m.BotName, submit)

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, m.opts...)
	p := tea.NewProgram(model, opts...)

	m.mu.Lock()
	m.program = p
	backlog := m.backlog
	m.backlog = nil
	m.mu.Unlock()

	go func() {
		for _, text := range backlog {
			p.Send(replyMsg{text: text})
		}
	}()

	_, err := p.Run()

	m.mu.Lock()
	m.program = nil
	m.mu.Unlock()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Send shows text as a bot reply. Replies sent before Listen starts are
// shown once it does.
func (m *Messenger) Send(_ context.Context, _ int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.program == nil {
		m.backlog = append(m.backlog, text)
		return nil
	}
	m.program.Send(replyMsg{text: text})
	return nil
}
