package tui

import (
	"fmt"
	"strings"
	"time"

	"feedctl/internal/model"
	"feedctl/internal/service"

	"github.com/charmbracelet/lipgloss"
)

// cardHeight is the number of terminal rows one card takes in the list.
const cardHeight = 5

func (m Model) View() string {
	var body string
	switch m.mode {
	case modeDetail:
		body = m.detailView()
	case modeForm:
		body = m.formView()
	case modeConfirm:
		body = m.confirmView()
	default:
		body = m.listView()
	}

	parts := []string{m.headerView(), body}
	if m.mode == modeSearch {
		parts = append(parts, m.search.View())
	}
	parts = append(parts, m.statusView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerView() string {
	v := m.view
	s := fmt.Sprintf("feedctl · %d of %d posts", len(v.Posts), v.Total)
	if term := strings.TrimSpace(v.Query.Search); term != "" {
		s += fmt.Sprintf(" · search %q", term)
	}
	if v.Query.Sort != service.SortNone {
		s += " · " + v.Query.Sort.String() + " first"
	}
	if m.busy {
		s += " · working…"
	}
	return m.styles.header.Render(s)
}

func (m Model) listView() string {
	if len(m.view.Posts) == 0 {
		if m.view.Total > 0 {
			return m.styles.faint.Render("No post matches the search.")
		}
		return m.styles.faint.Render("No posts yet. Press c to write one.")
	}

	visible := max((m.height-4)/cardHeight, 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.view.Posts))

	width := max(m.width-4, 20)
	cards := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		style := m.styles.card
		if i == m.cursor {
			style = m.styles.selected
		}
		cards = append(cards, style.Width(width).Render(m.cardContent(m.view.Posts[i])))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) cardContent(p model.Post) string {
	first, _, _ := strings.Cut(p.Body, "\n")
	meta := []string{"#" + string(p.ID)}
	if p.Author.Name != "" {
		meta = append(meta, p.Author.Name)
	}
	if !p.Created.IsZero() {
		meta = append(meta, p.Created.Local().Format(time.DateTime))
	}
	if p.HasMedia() {
		meta = append(meta, "[media]")
	}
	return m.styles.title.Render(p.Title) + "\n" + first + "\n" + m.styles.faint.Render(strings.Join(meta, " · "))
}

func (m Model) detailView() string {
	p := m.detail
	lines := []string{m.styles.title.Render(p.Title), ""}
	if p.Body != "" {
		lines = append(lines, p.Body, "")
	}
	author := p.Author.Name
	if p.Author.Email != "" {
		author += " <" + p.Author.Email + ">"
	}
	if author != "" {
		lines = append(lines, m.styles.faint.Render("author: "+author))
	}
	if !p.Created.IsZero() {
		lines = append(lines, m.styles.faint.Render("created: "+p.Created.Local().Format(time.DateTime)))
	}
	if p.HasMedia() {
		lines = append(lines, m.styles.faint.Render("media: "+p.Media))
	}
	if len(p.Tags) > 0 {
		lines = append(lines, m.styles.faint.Render("tags: "+strings.Join(p.Tags, ", ")))
	}
	lines = append(lines, "", m.styles.faint.Render("e edit · d delete · esc back"))
	return m.styles.card.Width(max(m.width-4, 20)).Render(strings.Join(lines, "\n"))
}

func (m Model) formView() string {
	title := "New post"
	if m.form.editing() {
		title = "Edit post #" + string(m.form.post.ID)
	}
	content := m.styles.title.Render(title) + "\n\n" + m.form.view() + "\n\n" + m.help.View(formHelp{keys: m.keys})
	return m.styles.modal.Render(content)
}

func (m Model) confirmView() string {
	if m.pending == nil {
		return ""
	}
	content := m.pending.Prompt + "\n\n" +
		m.styles.title.Render(m.pending.Post.Title) + "\n\n" +
		m.styles.faint.Render("y yes · n no")
	return m.styles.modal.Render(content)
}

func (m Model) statusView() string {
	if m.status == "" {
		if m.mode == modeList {
			return m.help.View(listHelp{keys: m.keys})
		}
		return ""
	}
	switch m.statusKind {
	case statusError:
		return m.styles.errText.Render(m.status)
	case statusWarn:
		return m.styles.warnText.Render(m.status)
	default:
		return m.styles.okText.Render(m.status)
	}
}
