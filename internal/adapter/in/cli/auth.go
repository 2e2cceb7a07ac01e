package cli

import (
	"context"
	"fmt"

	"feedctl/internal/service"

	"github.com/spf13/pflag"
)

func (r *runner) registerCommand() *Command {
	var req service.RegisterRequest

	return &Command{
		Name:    "register",
		Summary: "Create an account",
		Usage:   "feedctl register --name NAME --email EMAIL [--password PASSWORD] [--avatar URL]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
			fs.StringVar(&req.Name, "name", "", "user name (letters, digits and underscores)")
			fs.StringVar(&req.Email, "email", "", "e-mail address")
			fs.StringVar(&req.Password, "password", "", "password, prompted for when omitted")
			fs.StringVar(&req.Avatar, "avatar", "", "avatar image URL")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			svc, err := r.services(ctx)
			if err != nil {
				return err
			}
			if req.Password == "" {
				if req.Password, err = readSecret(r.env.Stdin, r.in, r.env.Stderr, "Password: "); err != nil {
					return err
				}
			}

			profile, err := svc.Auth.Register(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.env.Stdout, "Registered %s. Run 'feedctl login' to sign in.\n", profile.Name)
			return nil
		},
	}
}

func (r *runner) loginCommand() *Command {
	var req service.LoginRequest

	return &Command{
		Name:    "login",
		Summary: "Sign in and store the access token",
		Usage:   "feedctl login --email EMAIL [--password PASSWORD]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVar(&req.Email, "email", "", "e-mail address")
			fs.StringVar(&req.Password, "password", "", "password, prompted for when omitted")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			svc, err := r.services(ctx)
			if err != nil {
				return err
			}
			if req.Password == "" {
				if req.Password, err = readSecret(r.env.Stdin, r.in, r.env.Stderr, "Password: "); err != nil {
					return err
				}
			}

			profile, err := svc.Auth.Login(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(r.env.Stdout, "Logged in as %s\n", profile.Name)
			return nil
		},
	}
}

func (r *runner) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Forget the stored access token",
		Run: func(ctx context.Context, _ []string) error {
			svc, err := r.services(ctx)
			if err != nil {
				return err
			}
			if err := svc.Auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(r.env.Stdout, "Logged out")
			return nil
		},
	}
}

func (r *runner) whoamiCommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the signed in user",
		Run: func(ctx context.Context, _ []string) error {
			svc, err := r.loggedIn(ctx)
			if err != nil {
				return err
			}
			profile, err := svc.Auth.Whoami(ctx)
			if err != nil {
				return err
			}
			if profile.Email != "" {
				fmt.Fprintf(r.env.Stdout, "%s <%s>\n", profile.Name, profile.Email)
			} else {
				fmt.Fprintln(r.env.Stdout, profile.Name)
			}
			return nil
		},
	}
}
