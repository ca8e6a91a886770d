package client

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.lsp.dev/pkg/fakenet"
)

// Spawn starts argv as a child process and talks to it over its stdio.
// Closing the session waits for the process to exit.
func Spawn(ctx context.Context, argv []string, opts ...Option) (*Session, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	conn := fakenet.NewConn("stdio", stdout, stdin)
	s, err := Dial(ctx, conn, append(opts, withWait(cmd.Wait))...)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	return s, nil
}

func withWait(wait func() error) Option {
	return func(s *Session) {
		s.wait = wait
	}
}
