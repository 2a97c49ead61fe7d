package models

// User is a registered account. Password holds a bcrypt hash and is never serialized.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"-"`
}
