// Package cli is the one-shot command line front end of feedctl.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"feedctl/internal/service"
)

var ErrNotLoggedIn = errors.New("not logged in; run 'feedctl login' first")

// Services are the use cases the commands drive.
type Services struct {
	Feed *service.FeedService
	Auth *service.AuthService
}

// ServicesFunc builds the services around the presentation the command
// line supplies.
type ServicesFunc func(ctx context.Context, r service.Renderer, n service.Notifier) (Services, error)

type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Services ServicesFunc
	// RunTUI starts the interactive UI; nil disables the tui command.
	RunTUI func(ctx context.Context) error
}

type runner struct {
	env      Env
	in       *bufio.Reader
	recorder *viewRecorder
	cards    *cardPrinter

	svc *Services
}

// NewRoot builds the feedctl command tree.
func NewRoot(env Env) *Command {
	r := &runner{
		env:      env,
		in:       bufio.NewReader(env.Stdin),
		recorder: &viewRecorder{},
		cards:    newCardPrinter(env.Stdout),
	}

	return &Command{
		Name:        "feedctl",
		Description: "feedctl reads and writes posts of a social feed from the terminal.",
		Usage:       "feedctl [--config FILE] [--log-level LEVEL] <command>",
		Output:      env.Stderr,
		Subcommands: []*Command{
			r.registerCommand(),
			r.loginCommand(),
			r.logoutCommand(),
			r.whoamiCommand(),
			r.postsCommand(),
			r.tuiCommand(),
		},
	}
}

func (r *runner) services(ctx context.Context) (Services, error) {
	if r.svc != nil {
		return *r.svc, nil
	}
	svc, err := r.env.Services(ctx, r.recorder, &writerNotifier{w: r.env.Stderr})
	if err != nil {
		return Services{}, err
	}
	r.svc = &svc
	return svc, nil
}

// loggedIn fails early with ErrNotLoggedIn so that feed commands do not
// silently do nothing.
func (r *runner) loggedIn(ctx context.Context) (Services, error) {
	svc, err := r.services(ctx)
	if err != nil {
		return Services{}, err
	}
	if _, err := svc.Auth.Whoami(ctx); err != nil {
		if errors.Is(err, service.ErrMissingCredential) {
			return Services{}, ErrNotLoggedIn
		}
		return Services{}, err
	}
	return svc, nil
}

// refreshed logs in and synchronises the feed.
func (r *runner) refreshed(ctx context.Context) (Services, error) {
	svc, err := r.loggedIn(ctx)
	if err != nil {
		return Services{}, err
	}
	if err := svc.Feed.Refresh(ctx); err != nil {
		return Services{}, err
	}
	return svc, nil
}

func (r *runner) tuiCommand() *Command {
	return &Command{
		Name:    "tui",
		Summary: "Browse and edit the feed interactively",
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: tui takes no arguments", ErrUsage)
			}
			if r.env.RunTUI == nil {
				return errors.New("interactive mode is not available")
			}
			return r.env.RunTUI(ctx)
		},
	}
}
