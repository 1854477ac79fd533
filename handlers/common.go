package handlers

import (
	"context"
	"net/http"

	"todo-service/views"

	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// requestFields describes the current route; session-gated routes also carry the user id
func requestFields(ctx context.Context) []zap.Field {
	fields := []zap.Field{
		zap.String("route", httpserver.GetRouteName(ctx)),
		zap.String("method", httpserver.GetRouteMethod(ctx)),
		zap.String("path", httpserver.GetRoutePath(ctx)),
	}
	if auth := httpserver.GetRequestAuth(ctx); auth != nil && auth.Client != "" {
		fields = append(fields, zap.String("user_id", auth.Client))
	}
	return fields
}

func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	allFields := append(requestFields(ctx), fields...)

	switch level {
	case "info":
		logger.Info(message, allFields...)
	case "error":
		logger.Error(message, allFields...)
	case "debug":
		logger.Debug(message, allFields...)
	}
}

// render writes a page, falling back to a bare 500 if the template itself fails
func (h *Handler) render(ctx context.Context, w http.ResponseWriter, status int, page string, data views.Page) {
	if err := h.views.Render(w, status, page, data); err != nil {
		logRequest(ctx, "error", "Failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// fail logs the underlying cause and shows only the AppError message to the caller
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, appErr *errs.AppError, cause error) {
	fields := []zap.Field{zap.Int("status", appErr.Code)}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	logRequest(ctx, "error", appErr.Message, fields...)

	h.render(ctx, w, appErr.Code, views.PageError, views.Page{
		Title:   http.StatusText(appErr.Code),
		Message: appErr.Message,
	})
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}
