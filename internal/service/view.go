package service

import (
	"fmt"
	"slices"
	"strings"

	"feedctl/internal/model"
)

type SortOrder int

const (
	// SortNone keeps the order the API returned.
	SortNone SortOrder = iota
	// SortNewest orders by creation time, newest first.
	SortNewest
	// SortOldest orders by creation time, oldest first.
	SortOldest
)

func (o SortOrder) String() string {
	switch o {
	case SortNewest:
		return "newest"
	case SortOldest:
		return "oldest"
	default:
		return "none"
	}
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "newest", "desc":
		return SortNewest, nil
	case "oldest", "asc":
		return SortOldest, nil
	default:
		return SortNone, fmt.Errorf("%w: unknown sort order %q", ErrInvalidRequest, s)
	}
}

// ViewQuery selects which posts are displayed and in which order. The zero
// value is the default view: everything, in store order.
type ViewQuery struct {
	Search string
	Sort   SortOrder
}

func (q ViewQuery) IsDefault() bool {
	return strings.TrimSpace(q.Search) == "" && q.Sort == SortNone
}

// FeedView is a rendered projection of the post store.
type FeedView struct {
	Posts []model.Post
	Query ViewQuery
	// Total is the size of the store the view was projected from.
	Total int
}

// Project filters posts by a case-insensitive substring of the body and then
// sorts them by creation time. The input slice is never modified.
func Project(posts []model.Post, q ViewQuery) []model.Post {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if term != "" && !strings.Contains(strings.ToLower(p.Body), term) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b model.Post) int {
			return b.Created.Compare(a.Created)
		})
	case SortOldest:
		slices.SortStableFunc(out, func(a, b model.Post) int {
			return a.Created.Compare(b.Created)
		})
	}
	return out
}
