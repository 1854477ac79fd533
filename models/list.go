package models

import (
	"database/sql"
	"time"
)

// DefaultListTitle is the title given to a list created on first access
const DefaultListTitle = "To Do List"

// List is a user's to-do list; it exclusively owns its items
type List struct {
	ID        string         `json:"id" db:"id"`
	OwnerID   sql.NullString `json:"-" db:"owner_id"` // NULL only for legacy lists
	Title     string         `json:"title" db:"title"`
	Items     []Item         `json:"items" db:"-"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// Owner returns the owning user id, or "" for an ownerless list
func (l *List) Owner() string {
	if !l.OwnerID.Valid {
		return ""
	}
	return l.OwnerID.String
}

// Item is a single checkbox entry of a list
type Item struct {
	ID        string    `json:"id" db:"id"`
	ListID    string    `json:"list_id" db:"list_id"`
	Text      string    `json:"text" db:"text"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AddItemRequest represents the POST / form
type AddItemRequest struct {
	ListID string `json:"listId"`
	Text   string `json:"newTitle"`
}

// DeleteItemRequest represents the POST /delete form
// ListID is optional; when empty the list is matched by title
type DeleteItemRequest struct {
	ItemID   string `json:"checkbox"`
	ListName string `json:"listName"`
	ListID   string `json:"listId,omitempty"`
}
