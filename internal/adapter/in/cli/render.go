package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"feedctl/internal/model"
	"feedctl/internal/service"

	"github.com/charmbracelet/lipgloss"
)

const cardWidth = 72

type cardPrinter struct {
	w io.Writer

	card   lipgloss.Style
	title  lipgloss.Style
	meta   lipgloss.Style
	header lipgloss.Style
}

func newCardPrinter(w io.Writer) *cardPrinter {
	r := lipgloss.NewRenderer(w)
	return &cardPrinter{
		w: w,
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(cardWidth),
		title:  r.NewStyle().Bold(true),
		meta:   r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
	}
}

// Feed prints one card per post, preceded by a summary line.
func (p *cardPrinter) Feed(view service.FeedView) {
	fmt.Fprintln(p.w, p.header.Render(summary(view)))
	for _, post := range view.Posts {
		fmt.Fprintln(p.w, p.card.Render(p.cardBody(post, false)))
	}
}

func (p *cardPrinter) Detail(post model.Post) {
	fmt.Fprintln(p.w, p.card.Render(p.cardBody(post, true)))
}

func (p *cardPrinter) cardBody(post model.Post, full bool) string {
	var b strings.Builder
	b.WriteString(p.title.Render(post.Title))
	b.WriteString("\n")
	if post.Body != "" {
		body := post.Body
		if !full {
			body = excerpt(body, 3)
		}
		b.WriteString(body)
		b.WriteString("\n")
	}

	meta := []string{"#" + string(post.ID)}
	if post.Author.Name != "" {
		meta = append(meta, "by "+post.Author.Name)
	}
	if !post.Created.IsZero() {
		meta = append(meta, post.Created.Local().Format(time.DateTime))
	}
	if post.HasMedia() && !full {
		meta = append(meta, "[media]")
	}
	b.WriteString(p.meta.Render(strings.Join(meta, " · ")))

	if full {
		if post.Author.Email != "" {
			b.WriteString("\n" + p.meta.Render("author: "+post.Author.Name+" <"+post.Author.Email+">"))
		}
		if post.HasMedia() {
			b.WriteString("\n" + p.meta.Render("media: "+post.Media))
		}
		if len(post.Tags) > 0 {
			b.WriteString("\n" + p.meta.Render("tags: "+strings.Join(post.Tags, ", ")))
		}
	}
	return b.String()
}

func summary(view service.FeedView) string {
	s := fmt.Sprintf("%d of %d posts", len(view.Posts), view.Total)
	var opts []string
	if term := strings.TrimSpace(view.Query.Search); term != "" {
		opts = append(opts, fmt.Sprintf("search %q", term))
	}
	if view.Query.Sort != service.SortNone {
		opts = append(opts, view.Query.Sort.String()+" first")
	}
	if len(opts) > 0 {
		s += " (" + strings.Join(opts, ", ") + ")"
	}
	return s
}

func excerpt(s string, lines int) string {
	parts := strings.SplitN(s, "\n", lines+1)
	if len(parts) <= lines {
		return s
	}
	return strings.Join(parts[:lines], "\n") + " …"
}

type authorJSON struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type postJSON struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Body    string     `json:"body"`
	Media   string     `json:"media,omitempty"`
	Tags    []string   `json:"tags"`
	Created time.Time  `json:"created"`
	Updated time.Time  `json:"updated"`
	Author  authorJSON `json:"author"`
}

type feedJSON struct {
	Total  int        `json:"total"`
	Search string     `json:"search,omitempty"`
	Sort   string     `json:"sort"`
	Posts  []postJSON `json:"posts"`
}

func toPostJSON(p model.Post) postJSON {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postJSON{
		ID:      string(p.ID),
		Title:   p.Title,
		Body:    p.Body,
		Media:   p.Media,
		Tags:    tags,
		Created: p.Created,
		Updated: p.Updated,
		Author:  authorJSON{Name: p.Author.Name, Email: p.Author.Email, Avatar: p.Author.Avatar},
	}
}

func toFeedJSON(view service.FeedView) feedJSON {
	posts := make([]postJSON, 0, len(view.Posts))
	for _, p := range view.Posts {
		posts = append(posts, toPostJSON(p))
	}
	return feedJSON{
		Total:  view.Total,
		Search: strings.TrimSpace(view.Query.Search),
		Sort:   view.Query.Sort.String(),
		Posts:  posts,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
