package model

import "time"

// PostID is the remote identifier of a post. It is assigned by the API and
// treated as opaque by the client.
type PostID string

type Post struct {
	ID      PostID
	Title   string
	Body    string
	Media   string
	Tags    []string
	Created time.Time
	Updated time.Time
	Author  Author
}

// HasMedia reports whether the post references an image.
func (p Post) HasMedia() bool {
	return p.Media != ""
}

type Author struct {
	Name   string
	Email  string
	Avatar string
}
