package tui

import (
	"strings"

	"feedctl/internal/model"
	"feedctl/internal/service"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// postForm edits a new post (title and body) or an existing one (title,
// body and media).
type postForm struct {
	post   *model.Post
	inputs []textinput.Model
	focus  int
}

func newInput(label, value string) textinput.Model {
	in := textinput.New()
	in.Prompt = label + ": "
	in.CharLimit = 2000
	in.Width = 60
	in.SetValue(value)
	return in
}

func newCreateForm() postForm {
	f := postForm{inputs: []textinput.Model{
		newInput("Title", ""),
		newInput("Body", ""),
	}}
	f.inputs[0].Focus()
	return f
}

// newEditForm pre-fills the inputs with the post's current values.
func newEditForm(p model.Post) postForm {
	req := service.UpdateFromPost(p)
	f := postForm{
		post: &p,
		inputs: []textinput.Model{
			newInput("Title", req.Title),
			newInput("Body", req.Body),
			newInput("Media", req.Media),
		},
	}
	f.inputs[0].Focus()
	return f
}

func (f postForm) editing() bool {
	return f.post != nil
}

func (f *postForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f postForm) update(msg tea.Msg) (postForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f postForm) createRequest() service.CreatePostRequest {
	return service.CreatePostRequest{
		Title: f.inputs[0].Value(),
		Body:  f.inputs[1].Value(),
	}
}

func (f postForm) updateRequest() service.UpdatePostRequest {
	return service.UpdatePostRequest{
		Title: f.inputs[0].Value(),
		Body:  f.inputs[1].Value(),
		Media: strings.TrimSpace(f.inputs[2].Value()),
	}
}

func (f postForm) view() string {
	lines := make([]string, 0, len(f.inputs))
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	return strings.Join(lines, "\n")
}
