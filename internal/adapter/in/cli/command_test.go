package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func testTree(out *bytes.Buffer, ran *[]string) *Command {
	var verbose bool
	leaf := func(name string) *Command {
		return &Command{
			Name:    name,
			Summary: name + " things",
			Flags: func() *pflag.FlagSet {
				fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
				fs.BoolVar(&verbose, "verbose", false, "talk more")
				return fs
			},
			Run: func(_ context.Context, args []string) error {
				*ran = append(*ran, name)
				*ran = append(*ran, args...)
				return nil
			},
		}
	}
	return &Command{
		Name:   "app",
		Output: out,
		Subcommands: []*Command{
			{Name: "posts", Summary: "posts", Subcommands: []*Command{leaf("list"), leaf("show")}},
			leaf("login"),
		},
	}
}

func TestCommand_Execute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		wantRan   []string
		wantErr   string
		wantUsage bool
		wantHelp  string
	}{
		{name: "nested dispatch", args: []string{"posts", "show", "42", "--verbose"}, wantRan: []string{"show", "42"}},
		{name: "typo suggestion", args: []string{"posst"}, wantErr: `did you mean "posts"`, wantUsage: true},
		{name: "unknown flag suggestion", args: []string{"login", "--verbos"}, wantErr: "did you mean --verbose", wantUsage: true},
		{name: "group without subcommand", args: []string{"posts"}, wantErr: "subcommand required", wantUsage: true, wantHelp: "list"},
		{name: "help", args: []string{"--help"}, wantHelp: "Commands:"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			var ran []string
			err := testTree(&out, &ran).Execute(context.Background(), tt.args)

			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				if tt.wantUsage {
					require.ErrorIs(t, err, ErrUsage)
				}
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantRan, ran)
			if tt.wantHelp != "" {
				require.Contains(t, out.String(), tt.wantHelp)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, levenshtein("posts", "posts"))
	require.Equal(t, 1, levenshtein("post", "posts"))
	require.Equal(t, 2, levenshtein("posst", "posts"))
	require.Equal(t, 5, levenshtein("", "login"))
}
