// Package console renders exam sessions, results and history in a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	appI18n "github.com/pavelanni/examdesk/internal/i18n"
)

// ErrInputClosed is returned when the input ends while a line is expected.
var ErrInputClosed = errors.New("input closed")

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

// Console reads commands from one stream and writes localized output to
// another. Output is safe for concurrent use; input is read by a single
// background goroutine started on first use.
type Console struct {
	ctx   context.Context
	in    io.Reader
	out   io.Writer
	color bool

	mu        sync.Mutex
	startOnce sync.Once
	lineC     chan string

	noticeOnce sync.Once
	notices    chan notice
}

// New creates a console. lang selects the message language; theme "plain"
// turns colors off.
func New(in io.Reader, out io.Writer, lang, theme string) *Console {
	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(lang))
	return &Console{
		ctx:   ctx,
		in:    in,
		out:   out,
		color: theme != "plain",
	}
}

// T returns the localized message for id.
func (c *Console) T(id string) string {
	return appI18n.T(c.ctx, id)
}

// Td returns the localized message for id with template data.
func (c *Console) Td(id string, data map[string]any) string {
	return appI18n.Td(c.ctx, id, data)
}

// Tp returns the localized plural message for id.
func (c *Console) Tp(id string, n int) string {
	return appI18n.Tp(c.ctx, id, n)
}

// Println writes one line.
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted output.
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) paint(code, s string) string {
	if !c.color {
		return s
	}
	return code + s + ansiReset
}

func (c *Console) lines() <-chan string {
	c.startOnce.Do(func() {
		c.lineC = make(chan string)
		go func() {
			defer close(c.lineC)
			sc := bufio.NewScanner(c.in)
			for sc.Scan() {
				c.lineC <- strings.TrimSpace(sc.Text())
			}
		}()
	})
	return c.lineC
}

// ReadLine waits for the next input line.
func (c *Console) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.lines():
		if !ok {
			return "", ErrInputClosed
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Ask prints prompt and returns the answer.
func (c *Console) Ask(ctx context.Context, prompt string) (string, error) {
	c.Printf("%s ", prompt)
	return c.ReadLine(ctx)
}

// YesNo asks a question answered with y or n. Anything but yes means no.
func (c *Console) YesNo(ctx context.Context, question string) (bool, error) {
	ans, err := c.Ask(ctx, question+" [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "y", "yes", "是":
		return true, nil
	}
	return false, nil
}
