package models

// Session is the server-side state referenced by the session cookie
type Session struct {
	LoggedIn  bool   `json:"logged_in"`
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
}
