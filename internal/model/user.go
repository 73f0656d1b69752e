package model

import (
	"strings"
)

// RoleAdmin grants access to the admin panel. RoleUser is assigned at sign-up.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the signed-in identity.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user may use admin operations.
func (u User) IsAdmin() bool {
	return strings.EqualFold(u.Role, RoleAdmin)
}

// Session is an authenticated identity plus its bearer token.
// A nil *Session means nobody is signed in.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials are what login sends.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is a sign-up form. ConfirmPassword is checked locally and
// never sent.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}
