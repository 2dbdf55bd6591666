// Package prompt asks the operator to acknowledge or decide.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ErrClosed is returned once the prompt can no longer reach the operator
var ErrClosed = errors.New("prompt closed")

// Prompt is a set of blocking operator dialogs. A false answer together with
// an error means the operator could not be asked.
type Prompt interface {
	// ConfirmInfo shows a message and waits for acknowledgement
	ConfirmInfo(title, message string) error
	// ConfirmYesNo returns true for yes
	ConfirmYesNo(title, message string) (bool, error)
	// ConfirmRetryCancel returns true for retry
	ConfirmRetryCancel(title, message string) (bool, error)
}

// Console prompts on a terminal
type Console struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	closed bool
}

// NewConsole creates a console prompt reading in and writing out
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// NewStdConsole prompts on stdin and stdout
func NewStdConsole() *Console {
	return NewConsole(os.Stdin, os.Stdout)
}

// ConfirmInfo implements Prompt
func (c *Console) ConfirmInfo(title, message string) error {
	_, err := c.ask(title, message, "[Enter] ")
	return err
}

// ConfirmYesNo implements Prompt
func (c *Console) ConfirmYesNo(title, message string) (bool, error) {
	return c.choose(title, message, "[y/n] ", "y", "yes")
}

// ConfirmRetryCancel implements Prompt
func (c *Console) ConfirmRetryCancel(title, message string) (bool, error) {
	return c.choose(title, message, "[r]etry/[c]ancel ", "r", "retry")
}

func (c *Console) choose(title, message, hint string, accept ...string) (bool, error) {
	answer, err := c.ask(title, message, hint)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	for _, a := range accept {
		if answer == a {
			return true, nil
		}
	}
	return false, nil
}

func (c *Console) ask(title, message, hint string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrClosed
	}
	if _, err := fmt.Fprintf(c.out, "\n== %s ==\n%s\n%s", title, message, hint); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			c.closed = true
			if strings.TrimSpace(line) == "" {
				return "", ErrClosed
			}
		} else {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}
	}
	return strings.TrimSpace(line), nil
}
