package models

import "time"

// User owns uploaded data files. A user is created explicitly through the
// users endpoint or lazily the first time an upload references an unseen
// email. Emails are matched exactly, never updated or deleted.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
