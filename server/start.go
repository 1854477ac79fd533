package server

import (
	"todo-service/accounts"
	cachepackage "todo-service/cache"
	"todo-service/config"
	"todo-service/database"
	"todo-service/handlers"
	"todo-service/session"
	"todo-service/store"
	"todo-service/views"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Endpoint pairs a route with its handler
type Endpoint struct {
	Route   httpserver.Route
	Handler httpserver.HandlerFunc
}

// Routes returns the route table in registration order.
// The catch-all /{userId} route must stay last so the fixed paths win.
func Routes(h *handlers.Handler) []Endpoint {
	return []Endpoint{
		{httpserver.Route{Name: "HealthCheck", Method: "GET", Path: "/health", AuthType: "none"}, h.Health},
		{httpserver.Route{Name: "Home", Method: "GET", Path: "/", AuthType: "none"}, h.Home},
		{httpserver.Route{Name: "AddItem", Method: "POST", Path: "/", AuthType: session.AuthType}, h.AddItem},
		{httpserver.Route{Name: "DeleteItem", Method: "POST", Path: "/delete", AuthType: session.AuthType}, h.DeleteItem},
		{httpserver.Route{Name: "About", Method: "GET", Path: "/about", AuthType: "none"}, h.About},
		{httpserver.Route{Name: "RegisterForm", Method: "GET", Path: "/register", AuthType: "none"}, h.RegisterForm},
		{httpserver.Route{Name: "Register", Method: "POST", Path: "/register", AuthType: "none"}, h.Register},
		{httpserver.Route{Name: "LoginForm", Method: "GET", Path: "/login", AuthType: "none"}, h.LoginForm},
		{httpserver.Route{Name: "Login", Method: "POST", Path: "/login", AuthType: "none"}, h.Login},
		{httpserver.Route{Name: "Logout", Method: "GET", Path: "/logout", AuthType: "none"}, h.Logout},
		{httpserver.Route{Name: "AlertPage", Method: "GET", Path: "/alert", AuthType: "none"}, h.AlertPage},
		{httpserver.Route{Name: "Alert", Method: "POST", Path: "/alert", AuthType: "none"}, h.Alert},
		{httpserver.Route{Name: "UserList", Method: "GET", Path: "/{userId}", AuthType: "none"}, h.UserList},
	}
}

// StartServer wires the stores, sessions and handlers and blocks serving HTTP
func StartServer(cfg *config.Config) error {
	logger.Info("Starting To-Do Service...")

	dbConn, err := database.InitializeDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	cache, err := cachepackage.InitializeCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer cache.Close()

	renderer, err := views.New()
	if err != nil {
		return err
	}

	sessions := session.NewManager(cache, cfg.Session.TTL, cfg.Session.CookieSecure)
	accountService := accounts.NewService(store.NewUserStore(dbConn), cfg.Auth.BcryptCost)
	handler := handlers.NewHandler(accountService, store.NewListStore(dbConn), sessions, renderer)

	// Session routes reject anonymous callers before the handler runs
	server := httpserver.New(cfg.Server.Port, sessions.Authenticate)
	for _, endpoint := range Routes(handler) {
		server.Register(endpoint.Route, endpoint.Handler)
	}

	logger.Info("To-Do Service started", zap.String("port", cfg.Server.Port))

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		return err
	}
	return nil
}
