package service

import (
	"fmt"
	"regexp"

	"feedctl/internal/model"

	"github.com/go-playground/validator/v10"
)

type CreatePostRequest struct {
	Title string
	Body  string
}

// UpdatePostRequest replaces every editable field of a post; there is no
// partial update.
type UpdatePostRequest struct {
	Title string
	Body  string
	Media string
}

// UpdateFromPost pre-fills an update with the post's current values.
func UpdateFromPost(p model.Post) UpdatePostRequest {
	return UpdatePostRequest{Title: p.Title, Body: p.Body, Media: p.Media}
}

type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type RegisterRequest struct {
	Name     string `validate:"required,max=20,username"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Avatar   string `validate:"omitempty,url"`
}

// LoginResult is what the auth endpoint hands back on success.
type LoginResult struct {
	AccessToken string
	Profile     model.Profile
}

var usernameRe = regexp.MustCompile(`^\w+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("register username validation: %v", err))
	}
	return v
}

var validate = newValidator()
