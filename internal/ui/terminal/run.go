package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Controller is the part of the client the terminal drives.
type Controller interface {
	StartNewGame(ctx context.Context) error
	ResumeGame(ctx context.Context) error
	SubmitInput(ctx context.Context, raw string) error
	Retry(ctx context.Context) error
}

// Commands understood at any time.
const (
	cmdQuit  = "/quit"
	cmdRetry = "/retry"
)

// Run reads lines from in until EOF, /quit or ctx is done. On the start
// menu a line picks an entry; in game it is sent as player input.
func Run(ctx context.Context, ctrl Controller, s *Surface, in io.Reader, tutorial []string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	s.Flush()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := scanner.Text()
		cmd := strings.ToLower(strings.TrimSpace(line))

		var err error
		switch {
		case cmd == cmdQuit:
			return nil
		case cmd == cmdRetry:
			err = ctrl.Retry(ctx)
		case !s.InGame():
			switch cmd {
			case "1", "new":
				err = ctrl.StartNewGame(ctx)
			case "2", "continue":
				err = ctrl.ResumeGame(ctx)
			case "3", "help":
				s.writeTutorial(tutorial)
			case "q", "quit":
				return nil
			}
		default:
			err = ctrl.SubmitInput(ctx, line)
		}
		if err != nil {
			// The surface already shows the failure.
			logger.Debug("command failed", "command", cmd, "error", err)
		}
		s.Flush()
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func (s *Surface) writeTutorial(lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	b.WriteString("\n")
	for _, line := range lines {
		for _, row := range wrapText(line, s.width-2) {
			b.WriteString("  " + row + "\n")
		}
	}
	io.WriteString(s.out, b.String())
}
