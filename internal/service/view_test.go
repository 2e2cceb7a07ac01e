package service

import (
	"slices"
	"testing"
	"time"

	"feedctl/internal/model"

	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ids(posts []model.Post) []model.PostID {
	out := make([]model.PostID, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func scenarioPosts() []model.Post {
	return []model.Post{
		{ID: "1", Body: "hello world", Created: day("2024-01-01")},
		{ID: "2", Body: "goodbye", Created: day("2024-02-01")},
	}
}

func TestProject_Scenario(t *testing.T) {
	t.Parallel()

	posts := scenarioPosts()

	require.Equal(t, []model.PostID{"1"}, ids(Project(posts, ViewQuery{Search: "hello"})))
	require.Equal(t, []model.PostID{"2", "1"}, ids(Project(posts, ViewQuery{Sort: SortNewest})))
	require.Equal(t, []model.PostID{"1", "2"}, ids(Project(posts, ViewQuery{Sort: SortOldest})))
}

func TestProject_Search(t *testing.T) {
	t.Parallel()

	posts := []model.Post{
		{ID: "1", Title: "Cats", Body: "I like Go"},
		{ID: "2", Title: "go", Body: "nothing here"},
		{ID: "3", Body: "GOPHERS everywhere", Author: model.Author{Name: "go"}},
		{ID: "4", Body: ""},
	}

	tests := []struct {
		name string
		term string
		want []model.PostID
	}{
		{name: "empty term shows all in order", term: "", want: []model.PostID{"1", "2", "3", "4"}},
		{name: "whitespace term shows all", term: "  \t ", want: []model.PostID{"1", "2", "3", "4"}},
		{name: "case insensitive body match", term: "go", want: []model.PostID{"1", "3"}},
		{name: "term is trimmed", term: "  gophers ", want: []model.PostID{"3"}},
		{name: "title is not searched", term: "cats", want: []model.PostID{}},
		{name: "no match", term: "zebra", want: []model.PostID{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Project(posts, ViewQuery{Search: tt.term})
			require.NotNil(t, got)
			require.Equal(t, tt.want, ids(got))
		})
	}
}

func TestProject_SortDirectionsAreReverses(t *testing.T) {
	t.Parallel()

	base := day("2023-06-01")
	var posts []model.Post
	for i, offset := range []int{5, 1, 9, 3, 7, 2} {
		posts = append(posts, model.Post{
			ID:      model.PostID(string(rune('a' + i))),
			Created: base.Add(time.Duration(offset) * time.Hour),
		})
	}

	newest := ids(Project(posts, ViewQuery{Sort: SortNewest}))
	oldest := ids(Project(posts, ViewQuery{Sort: SortOldest}))

	reversed := slices.Clone(oldest)
	slices.Reverse(reversed)
	require.Equal(t, newest, reversed)
}

func TestProject_SortIsStableForTies(t *testing.T) {
	t.Parallel()

	same := day("2024-03-03")
	posts := []model.Post{
		{ID: "a", Created: same},
		{ID: "b", Created: day("2024-03-04")},
		{ID: "c", Created: same},
	}

	require.Equal(t, []model.PostID{"b", "a", "c"}, ids(Project(posts, ViewQuery{Sort: SortNewest})))
	require.Equal(t, []model.PostID{"a", "c", "b"}, ids(Project(posts, ViewQuery{Sort: SortOldest})))
}

func TestProject_SearchAndSortCompose(t *testing.T) {
	t.Parallel()

	posts := []model.Post{
		{ID: "1", Body: "go one", Created: day("2024-01-01")},
		{ID: "2", Body: "rust", Created: day("2024-01-02")},
		{ID: "3", Body: "go three", Created: day("2024-01-03")},
	}

	got := Project(posts, ViewQuery{Search: "go", Sort: SortNewest})
	require.Equal(t, []model.PostID{"3", "1"}, ids(got))
}

func TestProject_DoesNotTouchInput(t *testing.T) {
	t.Parallel()

	posts := scenarioPosts()
	before := slices.Clone(posts)

	_ = Project(posts, ViewQuery{Sort: SortNewest})
	require.Equal(t, before, posts)
}

func TestParseSortOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{in: "", want: SortNone},
		{in: "none", want: SortNone},
		{in: "Newest", want: SortNewest},
		{in: "desc", want: SortNewest},
		{in: "oldest", want: SortOldest},
		{in: " asc ", want: SortOldest},
		{in: "random", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSortOrder(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidRequest)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
		require.Equal(t, got, mustParse(t, got.String()))
	}
}

func mustParse(t *testing.T, s string) SortOrder {
	t.Helper()
	o, err := ParseSortOrder(s)
	require.NoError(t, err)
	return o
}

func TestViewQuery_IsDefault(t *testing.T) {
	t.Parallel()

	require.True(t, ViewQuery{}.IsDefault())
	require.True(t, ViewQuery{Search: "   "}.IsDefault())
	require.False(t, ViewQuery{Search: "x"}.IsDefault())
	require.False(t, ViewQuery{Sort: SortOldest}.IsDefault())
}
