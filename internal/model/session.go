package model

type Profile struct {
	Name   string
	Email  string
	Avatar string
}

// Session is what a successful login leaves behind in the token store.
type Session struct {
	AccessToken string
	Profile     Profile
}

func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}
