package models

import "time"

type User struct {
	ID        string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // bcrypt hash, never returned
	Img       *string   `json:"img"`
	CreatedAt time.Time `json:"created_at"`
}

// Public returns the user without credentials, as sent to clients.
func (u *User) Public() map[string]interface{} {
	return map[string]interface{}{
		"user_id": u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"img":     u.Img,
	}
}
