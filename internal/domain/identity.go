package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Identity is the read-only projection of the signed-in user.
type Identity struct {
	ID        string
	Email     string
	Name      string // optional
	AvatarURL string // optional
}

// DisplayName returns the name when known, the email otherwise.
func (i Identity) DisplayName() string {
	if strings.TrimSpace(i.Name) != "" {
		return i.Name
	}
	return i.Email
}

// Initial is the upper-cased first letter of DisplayName, used when there is no avatar.
func (i Identity) Initial() string {
	r, _ := utf8.DecodeRuneInString(i.DisplayName())
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
