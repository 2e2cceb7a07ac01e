package cli

import (
	"context"
	"fmt"

	"feedctl/internal/model"
	"feedctl/internal/service"

	"github.com/spf13/pflag"
)

func (r *runner) postsCommand() *Command {
	return &Command{
		Name:    "posts",
		Summary: "List, show, create, edit and delete posts",
		Subcommands: []*Command{
			r.listCommand(),
			r.showCommand(),
			r.createCommand(),
			r.editCommand(),
			r.deleteCommand(),
		},
	}
}

func (r *runner) listCommand() *Command {
	var (
		search string
		order  string
		asJSON bool
	)

	return &Command{
		Name:    "list",
		Summary: "Print the feed as cards",
		Usage:   "feedctl posts list [--search TERM] [--sort newest|oldest] [--json]",
		Examples: []Example{
			{Description: "Posts mentioning coffee, newest first", Command: "feedctl posts list --search coffee --sort newest"},
		},
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			fs.StringVar(&search, "search", "", "only posts whose body contains TERM (case-insensitive)")
			fs.StringVar(&order, "sort", "", "sort by creation time: newest or oldest")
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			sortOrder, err := service.ParseSortOrder(order)
			if err != nil {
				return err
			}
			svc, err := r.refreshed(ctx)
			if err != nil {
				return err
			}
			if search != "" {
				svc.Feed.Search(ctx, search)
			}
			if sortOrder != service.SortNone {
				svc.Feed.SortBy(ctx, sortOrder)
			}

			view, ok := r.recorder.Last()
			if !ok {
				view = svc.Feed.View()
			}
			if asJSON {
				return writeJSON(r.env.Stdout, toFeedJSON(view))
			}
			r.cards.Feed(view)
			return nil
		},
	}
}

func (r *runner) showCommand() *Command {
	var asJSON bool

	return &Command{
		Name:    "show",
		Summary: "Show one post with its author and media",
		Usage:   "feedctl posts show ID [--json]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			id, err := singleID(args)
			if err != nil {
				return err
			}
			_, post, err := r.lookup(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(r.env.Stdout, toPostJSON(post))
			}
			r.cards.Detail(post)
			return nil
		},
	}
}

func (r *runner) createCommand() *Command {
	var req service.CreatePostRequest

	return &Command{
		Name:    "create",
		Summary: "Publish a new post",
		Usage:   "feedctl posts create --title TITLE --body BODY",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&req.Title, "title", "", "post title")
			fs.StringVar(&req.Body, "body", "", "post text")
			return fs
		},
		Run: func(ctx context.Context, _ []string) error {
			svc, err := r.loggedIn(ctx)
			if err != nil {
				return err
			}
			if err := svc.Feed.Create(ctx, req); err != nil {
				return err
			}
			fmt.Fprintln(r.env.Stdout, "Post created")
			return nil
		},
	}
}

func (r *runner) editCommand() *Command {
	var (
		flags              *pflag.FlagSet
		title, body, media string
	)

	return &Command{
		Name:    "edit",
		Summary: "Replace the title, body or media of a post",
		Usage:   "feedctl posts edit ID [--title TITLE] [--body BODY] [--media URL]",
		Description: "Replace the title, body or media of a post.\n\n" +
			"Fields that are not given keep their current value.",
		Flags: func() *pflag.FlagSet {
			flags = pflag.NewFlagSet("edit", pflag.ContinueOnError)
			flags.StringVar(&title, "title", "", "new title")
			flags.StringVar(&body, "body", "", "new text")
			flags.StringVar(&media, "media", "", "new media URL, empty to remove")
			return flags
		},
		Run: func(ctx context.Context, args []string) error {
			id, err := singleID(args)
			if err != nil {
				return err
			}
			svc, post, err := r.lookup(ctx, id)
			if err != nil {
				return err
			}

			req := service.UpdateFromPost(post)
			if flags.Changed("title") {
				req.Title = title
			}
			if flags.Changed("body") {
				req.Body = body
			}
			if flags.Changed("media") {
				req.Media = media
			}

			if err := svc.Feed.Update(ctx, post, req); err != nil {
				return err
			}
			fmt.Fprintf(r.env.Stdout, "Post %s updated\n", post.ID)
			return nil
		},
	}
}

func (r *runner) deleteCommand() *Command {
	var yes bool

	return &Command{
		Name:    "delete",
		Summary: "Delete a post after confirmation",
		Usage:   "feedctl posts delete ID [--yes]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("delete", pflag.ContinueOnError)
			fs.BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			id, err := singleID(args)
			if err != nil {
				return err
			}
			svc, post, err := r.lookup(ctx, id)
			if err != nil {
				return err
			}

			var confirmer service.Confirmer = yesConfirmer{}
			prompt := &promptConfirmer{in: r.in, out: r.env.Stderr}
			if !yes {
				confirmer = prompt
			}
			if err := svc.Feed.Delete(ctx, post, confirmer); err != nil {
				return err
			}

			if !yes && !prompt.affirmed {
				fmt.Fprintln(r.env.Stdout, "Cancelled")
				return nil
			}
			fmt.Fprintf(r.env.Stdout, "Post %s deleted\n", post.ID)
			return nil
		},
	}
}

// lookup refreshes the feed and finds the post with the given id in it.
func (r *runner) lookup(ctx context.Context, id model.PostID) (Services, model.Post, error) {
	svc, err := r.refreshed(ctx)
	if err != nil {
		return Services{}, model.Post{}, err
	}
	post, err := svc.Feed.Post(id)
	if err != nil {
		return Services{}, model.Post{}, fmt.Errorf("post %s: %w", id, err)
	}
	return svc, post, nil
}

func singleID(args []string) (model.PostID, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("%w: expected exactly one post ID", ErrUsage)
	}
	return model.PostID(args[0]), nil
}
