package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"feedctl/internal/model"
)

type createPostBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type updatePostBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Media string `json:"media"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar,omitempty"`
}

type profileDTO struct {
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Avatar mediaField `json:"avatar"`
}

func (p profileDTO) toModel() model.Profile {
	return model.Profile{Name: p.Name, Email: p.Email, Avatar: string(p.Avatar)}
}

// loginResponse is flat in v1 of the API and wrapped in "data" in v2.
type loginResponse struct {
	profileDTO
	AccessToken string `json:"accessToken"`

	Data *struct {
		profileDTO
		AccessToken string `json:"accessToken"`
	} `json:"data"`
}

func (r loginResponse) profile() model.Profile {
	if r.Data != nil {
		return r.Data.toModel()
	}
	return r.toModel()
}

func (r loginResponse) token() string {
	if r.AccessToken == "" && r.Data != nil {
		return r.Data.AccessToken
	}
	return r.AccessToken
}

type postDTO struct {
	ID      flexID      `json:"id"`
	Title   string      `json:"title"`
	Body    string      `json:"body"`
	Media   mediaField  `json:"media"`
	Tags    []string    `json:"tags"`
	Created apiTime     `json:"created"`
	Updated apiTime     `json:"updated"`
	Owner   string      `json:"owner"`
	Author  *profileDTO `json:"author"`
}

func (p postDTO) toModel() model.Post {
	post := model.Post{
		ID:      model.PostID(p.ID),
		Title:   p.Title,
		Body:    p.Body,
		Media:   string(p.Media),
		Tags:    p.Tags,
		Created: time.Time(p.Created),
		Updated: time.Time(p.Updated),
		Author:  model.Author{Name: p.Owner},
	}
	if p.Author != nil {
		post.Author = model.Author{
			Name:   p.Author.Name,
			Email:  p.Author.Email,
			Avatar: string(p.Author.Avatar),
		}
	}
	return post
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// flexID accepts both numeric and string identifiers.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

// mediaField accepts a plain URL or an object with a url field.
type mediaField string

func (m *mediaField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*m = ""
		return nil
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*m = mediaField(obj.URL)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	*m = mediaField(s)
	return nil
}

type apiTime time.Time

func (t *apiTime) UnmarshalJSON(data []byte) error {
	var s string
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = apiTime{}
		return nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		*t = apiTime{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = apiTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("timestamp %q: unknown format", s)
}
