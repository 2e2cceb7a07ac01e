package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"feedctl/internal/service"

	"golang.org/x/term"
)

// viewRecorder keeps the last rendered view; one-shot commands print it
// once they are done.
type viewRecorder struct {
	mu   sync.Mutex
	view *service.FeedView
}

var _ service.Renderer = (*viewRecorder)(nil)

func (r *viewRecorder) Render(_ context.Context, v service.FeedView) {
	r.mu.Lock()
	r.view = &v
	r.mu.Unlock()
}

func (r *viewRecorder) Last() (service.FeedView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.view == nil {
		return service.FeedView{}, false
	}
	return *r.view, true
}

type writerNotifier struct {
	w io.Writer
}

var _ service.Notifier = (*writerNotifier)(nil)

func (n *writerNotifier) NotifyFailure(_ context.Context, op service.Operation, err error) {
	fmt.Fprintf(n.w, "%s: %v\n", op.FailureMessage(), err)
}

// promptConfirmer asks on out and reads the answer from in. Anything but
// y/yes is a no, including end of input.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer

	affirmed bool
}

func (c *promptConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		c.affirmed = true
	}
	return c.affirmed, nil
}

type yesConfirmer struct{}

func (yesConfirmer) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

// readSecret prompts for a secret. On a terminal echo is disabled, otherwise
// a line is read from in.
func readSecret(stdin io.Reader, in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
