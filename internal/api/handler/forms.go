package handler

import (
	"errors"
	"strconv"

	"github.com/starterpack/webapp/internal/core/domain"
)

// User-facing form messages.
const (
	msgFillAllFields      = "Please fill in all fields."
	msgPasswordsMismatch  = "Passwords do not match."
	msgUsernameExists     = "Username already exists."
	msgEmailRegistered    = "Email already registered."
	msgRegistered         = "Registration successful! You can now log in."
	msgInvalidCredentials = "Invalid username or password."
	msgLoggedOut          = "You have been logged out."
)

var msgPasswordTooShort = "Password must be at least " + strconv.Itoa(domain.MinPasswordLength) + " characters long."

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	// Browsers send "on" or the input's value for a ticked checkbox.
	RememberMe string `form:"remember_me"`
}

func (f loginForm) remember() bool {
	return f.RememberMe != ""
}

type registerForm struct {
	Username  string `form:"username"  validate:"required"`
	Email     string `form:"email"     validate:"required"`
	Password  string `form:"password"  validate:"required,min=6"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

// registerMessage picks the single message to show. Missing fields beat a
// mismatch, which beats a short password.
func registerMessage(err error) string {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return msgFillAllFields
	}
	switch {
	case ve.HasTag("required"):
		return msgFillAllFields
	case ve.HasTag("eqfield"):
		return msgPasswordsMismatch
	case ve.HasTag("min"):
		return msgPasswordTooShort
	default:
		return msgFillAllFields
	}
}
