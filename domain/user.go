package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const DefaultStatus = "I am new!"

type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Status    string
	Posts     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) ValidateEmail() error {
	addr, err := mail.ParseAddress(u.Email)
	if err != nil || addr.Address != u.Email {
		return errors.New("invalid email")
	}
	return nil
}

// HasPost reports whether postID is listed in the user's posts.
func (u User) HasPost(postID string) bool {
	for _, id := range u.Posts {
		if id == postID {
			return true
		}
	}
	return false
}

// NormalizeEmail lower-cases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
