package handlers

import (
	"todo-service/accounts"
	"todo-service/session"
	"todo-service/store"
	"todo-service/views"
)

// Handler serves the to-do web pages
type Handler struct {
	accounts *accounts.Service
	lists    *store.ListStore
	sessions *session.Manager
	views    *views.Renderer
}

// NewHandler creates a handler from explicitly passed dependencies
func NewHandler(accountService *accounts.Service, lists *store.ListStore, sessions *session.Manager, renderer *views.Renderer) *Handler {
	return &Handler{
		accounts: accountService,
		lists:    lists,
		sessions: sessions,
		views:    renderer,
	}
}
