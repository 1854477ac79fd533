package models

import "time"

// User represents a registered account
// Password is stored hashed (bcrypt); never return plain in JSON responses
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"` // Hashed; omitted from JSON
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RegisterRequest represents the POST /register form
type RegisterRequest struct {
	Email                string `json:"userMail"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password2"`
}

// LoginRequest represents the POST /login form
type LoginRequest struct {
	Email    string `json:"userMail"`
	Password string `json:"password"`
}
