package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"todo-service/models"
	"todo-service/session"
	"todo-service/store"
	"todo-service/views"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

const (
	msgListError    = "Could not load your list"
	msgListNotFound = "List not found"
	msgItemError    = "Could not update your list"
)

// Home handles GET / - shows the session user's list
func (h *Handler) Home(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Load(r)
	if !sess.LoggedIn || sess.UserID == "" {
		redirect(w, r, "/login")
		return
	}
	h.showList(ctx, w, sess.UserID)
}

// UserList handles GET /{userId}; only the user the session belongs to may view it
func (h *Handler) UserList(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	sess, _ := h.sessions.Load(r)
	if !sess.LoggedIn || sess.UserID != userID {
		logRequest(ctx, "debug", "Session does not own requested list", zap.String("requested", userID))
		redirect(w, r, "/login")
		return
	}
	h.showList(ctx, w, userID)
}

func (h *Handler) showList(ctx context.Context, w http.ResponseWriter, userID string) {
	list, err := h.lists.GetOrCreate(ctx, userID)
	if err != nil {
		h.fail(ctx, w, errs.NewInternalServerError(msgListError), err)
		return
	}

	h.render(ctx, w, http.StatusOK, views.PageList, views.Page{
		Title:  list.Title,
		UserID: userID,
		List:   list,
	})
}

// AddItem handles POST / - appends the submitted text to the session user's list
func (h *Handler) AddItem(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		redirect(w, r, "/login")
		return
	}

	req := models.AddItemRequest{
		ListID: r.PostFormValue("listId"),
		Text:   r.PostFormValue("newTitle"),
	}

	item, err := h.lists.AddItem(ctx, req.ListID, sess.UserID, req.Text)
	if errors.Is(err, store.ErrNotFound) {
		h.fail(ctx, w, errs.NewNotFoundError(msgListNotFound), err)
		return
	}
	if err != nil {
		h.fail(ctx, w, errs.NewInternalServerError(msgItemError), err)
		return
	}

	logRequest(ctx, "info", "Item added", zap.String("list_id", req.ListID), zap.String("item_id", item.ID))
	redirect(w, r, "/"+sess.UserID)
}

// DeleteItem handles POST /delete - removes the checked item and returns to the referring page
func (h *Handler) DeleteItem(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		redirect(w, r, "/login")
		return
	}

	req := models.DeleteItemRequest{
		ItemID:   strings.TrimSpace(r.PostFormValue("checkbox")),
		ListName: strings.TrimSpace(r.PostFormValue("listName")),
		ListID:   strings.TrimSpace(r.PostFormValue("listId")),
	}
	logRequest(ctx, "info", "Deleting item", zap.String("item_id", req.ItemID))

	var (
		deleted bool
		err     error
	)
	if req.ListID != "" {
		deleted, err = h.lists.DeleteItemByListID(ctx, sess.UserID, req.ListID, req.ItemID)
	} else {
		deleted, err = h.lists.DeleteItem(ctx, sess.UserID, req.ListName, req.ItemID)
	}
	if errors.Is(err, store.ErrNotFound) {
		h.fail(ctx, w, errs.NewNotFoundError(msgListNotFound), err)
		return
	}
	if err != nil {
		h.fail(ctx, w, errs.NewInternalServerError(msgItemError), err)
		return
	}
	if !deleted {
		logRequest(ctx, "info", "Item already gone", zap.String("item_id", req.ItemID))
	}

	redirect(w, r, refererPath(r, "/"+sess.UserID))
}

// refererPath returns the path of the Referer header so redirects never leave the site
func refererPath(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return fallback
	}
	return ref.Path
}

// About handles GET /about
func (h *Handler) About(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	h.render(ctx, w, http.StatusOK, views.PageAbout, views.Page{Title: "About"})
}

// Health handles GET /health
func (h *Handler) Health(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": "todo-service"})
}
