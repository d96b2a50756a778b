package web

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/2beens/workoutcompanion/pkg"
)

const minPasswordLength = 8

type FormErrors map[string]string

type SignupForm struct {
	Username string
	Email    string
	Password string
	Errors   FormErrors
}

func ParseSignupForm(r *http.Request) SignupForm {
	return SignupForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Errors:   FormErrors{},
	}
}

func (f *SignupForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = FormErrors{}
	}
	if f.Username == "" {
		f.Errors["username"] = "This field is required."
	}
	if f.Email == "" {
		f.Errors["email"] = "This field is required."
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		f.Errors["email"] = "Invalid email address."
	}
	if len(f.Password) < minPasswordLength {
		f.Errors["password"] = "Field must be at least 8 characters long."
	} else if len(f.Password) > pkg.MaxPasswordBytes {
		f.Errors["password"] = "Field cannot be longer than 72 characters."
	}
	return len(f.Errors) == 0
}

type LoginForm struct {
	Username string
	Password string
	Errors   FormErrors
}

func ParseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Errors:   FormErrors{},
	}
}

func (f *LoginForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = FormErrors{}
	}
	if f.Username == "" {
		f.Errors["username"] = "This field is required."
	}
	return len(f.Errors) == 0
}
