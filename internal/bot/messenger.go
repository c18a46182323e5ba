package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// Chat types.
const (
	ChatPrivate    = "private"
	ChatGroup      = "group"
	ChatSupergroup = "supergroup"
	ChatChannel    = "channel"
)

// #region types

// User is the author of a message.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// Message is an incoming text message, independent of the transport.
type Message struct {
	ChatID   int64
	ChatType string
	From     User
	Text     string
}

// Handler processes one incoming message.
type Handler func(ctx context.Context, msg Message) error

// Messenger connects the bot to the outside world.
type Messenger interface {
	// Username is the name other users address the bot by.
	Username() string
	// Listen delivers incoming messages to h until ctx ends or the input
	// is exhausted.
	Listen(ctx context.Context, h Handler) error
	// Send posts text to a chat.
	Send(ctx context.Context, chatID int64, text string) error
}

// #endregion types

// #region console

// ConsoleMessenger reads one message per input line and prints replies
// prefixed with ">>> ".
type ConsoleMessenger struct {
	ChatID   int64
	ChatType string
	From     User
	BotName  string

	in  io.Reader
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleMessenger returns a messenger for a single chat on in/out.
func NewConsoleMessenger(in io.Reader, out io.Writer, chatID int64, chatType string) *ConsoleMessenger {
	return &ConsoleMessenger{
		ChatID:   chatID,
		ChatType: chatType,
		From:     User{ID: 3, FirstName: "Franco", Username: "pepe"},
		BotName:  "DummyBot",
		in:       in,
		out:      out,
	}
}

func (c *ConsoleMessenger) Username() string { return c.BotName }

// Listen handles lines until EOF, "quit" or "exit". Handler errors are
// logged and do not stop the loop.
func (c *ConsoleMessenger) Listen(ctx context.Context, h Handler) error {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			return nil
		}
		msg := Message{ChatID: c.ChatID, ChatType: c.ChatType, From: c.From, Text: text}
		if err := h(ctx, msg); err != nil {
			log.Printf("[CONSOLE] handle %q: %v", text, err)
		}
	}
	return scanner.Err()
}

func (c *ConsoleMessenger) Send(_ context.Context, _ int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, ">>> %s\n", text)
	return err
}

// #endregion console
