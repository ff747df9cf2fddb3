package models

import (
	"strings"
	"time"
)

// User is a digest recipient.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FirstName derives the greeting name: first token of the display name if
// present, else the local part of the email address, lower-cased.
func (u *User) FirstName() string {
	if name := strings.TrimSpace(u.DisplayName); name != "" {
		return strings.Fields(name)[0]
	}
	local := u.Email
	if at := strings.Index(local, "@"); at >= 0 {
		local = local[:at]
	}
	return strings.ToLower(local)
}
