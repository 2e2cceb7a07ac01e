// Package tui is the interactive terminal front end: a list of post cards
// with a detail view, search, sort, and forms for creating and editing.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feedctl/internal/adapter/out/pubsub/inmemory"
	"feedctl/internal/model"
	"feedctl/internal/service"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Feed is what the UI needs from the feed service.
type Feed interface {
	Refresh(ctx context.Context) error
	Create(ctx context.Context, req service.CreatePostRequest) error
	Update(ctx context.Context, post model.Post, req service.UpdatePostRequest) error
	RequestDelete(post model.Post) *service.PendingDelete
	ResolveDelete(ctx context.Context, pending *service.PendingDelete, affirmed bool) error
	Search(ctx context.Context, term string)
	SortBy(ctx context.Context, order service.SortOrder)
	ResetView(ctx context.Context)
	View() service.FeedView
}

var _ Feed = (*service.FeedService)(nil)

type mode int

const (
	modeList mode = iota
	modeDetail
	modeSearch
	modeForm
	modeConfirm
)

const statusFadeDelay = 5 * time.Second

type feedEventMsg struct {
	event inmemory.Event
}

type opDoneMsg struct {
	op  service.Operation
	err error
}

type statusFadeMsg struct {
	seq int
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusWarn
	statusError
)

type Model struct {
	ctx    context.Context
	feed   Feed
	events <-chan inmemory.Event

	keys   KeyMap
	styles styles
	help   help.Model

	view   service.FeedView
	cursor int
	mode   mode
	// back is where the detail view and modals return to.
	back mode

	detail  model.Post
	search  textinput.Model
	form    postForm
	pending *service.PendingDelete
	busy    bool

	status     string
	statusKind statusKind
	statusSeq  int

	width  int
	height int
}

// NewModel builds the UI around feed. Events from the feed bus arrive on
// events; nil disables them.
func NewModel(ctx context.Context, feed Feed, events <-chan inmemory.Event) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search post text"

	return Model{
		ctx:    ctx,
		feed:   feed,
		events: events,
		keys:   DefaultKeyMap,
		styles: newStyles(DefaultTheme),
		help:   help.New(),
		view:   feed.View(),
		search: search,
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), m.run(service.OpRefresh, m.feed.Refresh))
}

func waitForEvent(ch <-chan inmemory.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return feedEventMsg{event: e}
	}
}

// run executes a feed operation off the UI goroutine.
func (m *Model) run(op service.Operation, fn func(context.Context) error) tea.Cmd {
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case feedEventMsg:
		var cmd tea.Cmd
		switch msg.event.Kind {
		case inmemory.EventRendered:
			m.setView(msg.event.View)
		case inmemory.EventFailed:
			cmd = m.setStatus(statusError, fmt.Sprintf("%s: %v", msg.event.Op.FailureMessage(), msg.event.Err))
		}
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case opDoneMsg:
		return m.handleOpDone(msg)

	case logRecordMsg:
		kind := statusWarn
		if msg.Level >= slog.LevelError {
			kind = statusError
		}
		return m, m.setStatus(kind, msg.Summary)

	case statusFadeMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.handleSearchKeys(msg)
		case modeForm:
			return m.handleFormKeys(msg)
		case modeConfirm:
			return m.handleConfirmKeys(msg)
		case modeDetail:
			return m.handleDetailKeys(msg)
		default:
			return m.handleListKeys(msg)
		}
	}
	return m, nil
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		if !service.IsReported(msg.err) {
			return m, m.setStatus(statusError, fmt.Sprintf("%s: %v", msg.op.FailureMessage(), msg.err))
		}
		// The form stays open so the input is not lost.
		return m, nil
	}

	// A successful mutation refreshed the feed; sync the view in case the
	// bus dropped the render.
	m.setView(m.feed.View())

	switch msg.op {
	case service.OpCreate:
		if m.mode == modeForm {
			m.mode = modeList
		}
		return m, m.setStatus(statusInfo, "Post created")
	case service.OpUpdate:
		if m.mode == modeForm {
			m.mode = m.back
		}
		if m.mode == modeDetail && !m.syncDetail() {
			m.mode = modeList
		}
		return m, m.setStatus(statusInfo, "Post updated")
	case service.OpDelete:
		return m, m.setStatus(statusInfo, "Post deleted")
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view.Posts)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if p, ok := m.selected(); ok {
			m.detail = p
			m.mode = modeDetail
		}
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.view.Query.Search)
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.SortNewest):
		m.feed.SortBy(m.ctx, service.SortNewest)
		m.setView(m.feed.View())
	case key.Matches(msg, m.keys.SortOldest):
		m.feed.SortBy(m.ctx, service.SortOldest)
		m.setView(m.feed.View())
	case key.Matches(msg, m.keys.ResetView):
		m.feed.ResetView(m.ctx)
		m.setView(m.feed.View())
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(service.OpRefresh, m.feed.Refresh)
	case key.Matches(msg, m.keys.New):
		m.form = newCreateForm()
		m.back = modeList
		m.mode = modeForm
	default:
		// Card actions act on the selection and never open the detail view.
		if p, ok := m.selected(); ok {
			return m.handleCardAction(msg, p, modeList)
		}
	}
	return m, nil
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		return m, nil
	}
	return m.handleCardAction(msg, m.detail, modeDetail)
}

func (m Model) handleCardAction(msg tea.KeyMsg, p model.Post, from mode) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		m.form = newEditForm(p)
		m.back = from
		m.mode = modeForm
	case key.Matches(msg, m.keys.Delete):
		m.pending = m.feed.RequestDelete(p)
		m.back = from
		m.mode = modeConfirm
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.feed.Search(m.ctx, m.search.Value())
		m.setView(m.feed.View())
		m.search.Blur()
		m.mode = modeList
		return m, nil
	case tea.KeyEsc:
		m.search.Blur()
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = m.back
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.form.move(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.form.move(-1)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.form.editing() {
			post, req := *m.form.post, m.form.updateRequest()
			return m, m.run(service.OpUpdate, func(ctx context.Context) error {
				return m.feed.Update(ctx, post, req)
			})
		}
		req := m.form.createRequest()
		return m, m.run(service.OpCreate, func(ctx context.Context) error {
			return m.feed.Create(ctx, req)
		})
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.pending
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.pending = nil
		m.mode = modeList
		return m, m.run(service.OpDelete, func(ctx context.Context) error {
			return m.feed.ResolveDelete(ctx, pending, true)
		})
	case key.Matches(msg, m.keys.Decline):
		m.pending = nil
		m.mode = m.back
		if err := m.feed.ResolveDelete(m.ctx, pending, false); err != nil {
			return m, m.setStatus(statusError, err.Error())
		}
	}
	return m, nil
}

func (m *Model) setView(v service.FeedView) {
	m.view = v
	if m.cursor >= len(v.Posts) {
		m.cursor = max(len(v.Posts)-1, 0)
	}
	m.syncDetail()
}

// syncDetail replaces the post shown in the detail view with its copy from
// the current view. It reports false when the post is no longer there.
func (m *Model) syncDetail() bool {
	if m.detail.ID == "" {
		return false
	}
	for _, p := range m.view.Posts {
		if p.ID == m.detail.ID {
			m.detail = p
			return true
		}
	}
	return false
}

func (m Model) selected() (model.Post, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Posts) {
		return model.Post{}, false
	}
	return m.view.Posts[m.cursor], true
}

func (m *Model) setStatus(kind statusKind, text string) tea.Cmd {
	m.statusSeq++
	m.status = text
	m.statusKind = kind
	seq := m.statusSeq
	return tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{seq: seq}
	})
}
