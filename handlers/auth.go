package handlers

import (
	"context"
	"errors"
	"net/http"

	"todo-service/accounts"
	"todo-service/models"
	"todo-service/views"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

const (
	titleRegister = "Register"
	titleLogin    = "Log-in"
	msgWelcome    = "Welcome!"
)

func parseRegisterForm(r *http.Request) models.RegisterRequest {
	return models.RegisterRequest{
		Email:                r.PostFormValue("userMail"),
		Password:             r.PostFormValue("password"),
		PasswordConfirmation: r.PostFormValue("password2"),
	}
}

func parseLoginForm(r *http.Request) models.LoginRequest {
	return models.LoginRequest{
		Email:    r.PostFormValue("userMail"),
		Password: r.PostFormValue("password"),
	}
}

// asAppError unwraps an account workflow error; anything else becomes a generic 500
func asAppError(err error) *errs.AppError {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return errs.NewInternalServerError(accounts.MsgServerError)
}

// RegisterForm handles GET /register
func (h *Handler) RegisterForm(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if sess, _ := h.sessions.Load(r); sess.LoggedIn {
		redirect(w, r, "/alert")
		return
	}
	h.render(ctx, w, http.StatusOK, views.PageRegister, views.Page{Title: titleRegister, Message: msgWelcome})
}

// Register handles POST /register
func (h *Handler) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if sess, _ := h.sessions.Load(r); sess.LoggedIn {
		redirect(w, r, "/alert")
		return
	}

	req := parseRegisterForm(r)
	logRequest(ctx, "info", "Register request", zap.String("email", req.Email))

	if _, err := h.accounts.Register(ctx, req.Email, req.Password, req.PasswordConfirmation); err != nil {
		appErr := asAppError(err)
		if appErr.Code == http.StatusInternalServerError {
			h.fail(ctx, w, appErr, err)
			return
		}
		logRequest(ctx, "info", "Registration rejected", zap.String("reason", appErr.Message))
		h.render(ctx, w, appErr.Code, views.PageRegister, views.Page{Title: titleRegister, Message: appErr.Message})
		return
	}

	h.render(ctx, w, http.StatusOK, views.PageLogin, views.Page{Title: titleRegister, Message: accounts.MsgRegistered})
}

// LoginForm handles GET /login
func (h *Handler) LoginForm(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if sess, _ := h.sessions.Load(r); sess.LoggedIn {
		redirect(w, r, "/alert")
		return
	}
	h.render(ctx, w, http.StatusOK, views.PageLogin, views.Page{Title: titleLogin, Message: msgWelcome})
}

// Login handles POST /login; a successful login starts a new session and goes to the user's list
func (h *Handler) Login(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if sess, _ := h.sessions.Load(r); sess.LoggedIn {
		redirect(w, r, "/alert")
		return
	}

	req := parseLoginForm(r)
	logRequest(ctx, "info", "Login request", zap.String("email", req.Email))

	user, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		appErr := asAppError(err)
		h.render(ctx, w, appErr.Code, views.PageLogin, views.Page{Title: titleLogin, Message: appErr.Message})
		return
	}

	_, err = h.sessions.Start(w, r, models.Session{
		LoggedIn:  true,
		UserID:    user.ID,
		UserEmail: user.Email,
	})
	if err != nil {
		h.fail(ctx, w, errs.NewInternalServerError(accounts.MsgServerError), err)
		return
	}

	logRequest(ctx, "info", "Login successful", zap.String("user_id", user.ID))
	redirect(w, r, "/"+user.ID)
}

// Logout handles GET /logout; failing to drop the session is logged, not shown
func (h *Handler) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		logRequest(ctx, "error", "Failed to destroy session", zap.Error(err))
	}
	redirect(w, r, "/")
}

// AlertPage handles GET /alert
func (h *Handler) AlertPage(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	h.render(ctx, w, http.StatusOK, views.PageAlert, views.Page{Title: "ALERT"})
}

// Alert handles POST /alert: the session stays but is no longer logged in
func (h *Handler) Alert(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	sess, id := h.sessions.Load(r)
	if id != "" {
		sess.LoggedIn = false
		if err := h.sessions.Save(id, *sess); err != nil {
			logRequest(ctx, "error", "Failed to update session", zap.Error(err))
		}
	}
	redirect(w, r, "/register")
}
