package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrBlankName is returned when registering without a name.
var ErrBlankName = errors.New("name must not be empty")

// User is the person acting on a client. Registration is anonymous: every
// call creates a distinct user even for a repeated name.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewUser trims name and assigns a fresh id.
func NewUser(name string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, ErrBlankName
	}
	return User{ID: uuid.New().String(), Name: name}, nil
}
