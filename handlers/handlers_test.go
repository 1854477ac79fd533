package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"todo-service/accounts"
	"todo-service/database"
	"todo-service/models"
	"todo-service/session"
	"todo-service/store"
	"todo-service/views"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{CallerKey: "file", TimeKey: "timestamp", CallerSkip: 1})
	os.Exit(m.Run())
}

type harness struct {
	handler  *Handler
	sessions *session.Manager
	users    *store.UserStore
	lists    *store.ListStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dbConn, err := database.NewInMemory("../database/migrations")
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	c, err := cache.New(cache.Config{Type: "memory"})
	require.NoError(t, err)

	renderer, err := views.New()
	require.NoError(t, err)

	users := store.NewUserStore(dbConn)
	lists := store.NewListStore(dbConn)
	sessions := session.NewManager(c, time.Hour, false)
	return &harness{
		handler:  NewHandler(accounts.NewService(users, bcrypt.MinCost), lists, sessions, renderer),
		sessions: sessions,
		users:    users,
		lists:    lists,
	}
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withCookie(req *http.Request, cookie *http.Cookie) *http.Request {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

// authenticated runs the session auth callback the way httpserver does for session routes
func (hs *harness) authenticated(t *testing.T, req *http.Request) context.Context {
	t.Helper()
	ok, auth := hs.sessions.Authenticate(req)
	require.True(t, ok, "request is not authenticated")
	return context.WithValue(req.Context(), httpserver.RequestAuthKey, auth)
}

func (hs *harness) register(t *testing.T, email, password string) {
	t.Helper()
	rec := httptest.NewRecorder()
	hs.handler.Register(context.Background(), rec, formRequest("/register", url.Values{
		"userMail":  {email},
		"password":  {password},
		"password2": {password},
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), accounts.MsgRegistered)
}

func (hs *harness) login(t *testing.T, email, password string) (*http.Cookie, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	hs.handler.Login(context.Background(), rec, formRequest("/login", url.Values{
		"userMail": {email},
		"password": {password},
	}))
	require.Equal(t, http.StatusFound, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c, rec.Header().Get("Location")
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil, ""
}

func (hs *harness) userID(t *testing.T, email string) string {
	t.Helper()
	user, err := hs.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.ID
}

func (hs *harness) getUserList(cookie *http.Cookie, userID string) *httptest.ResponseRecorder {
	req := withCookie(httptest.NewRequest(http.MethodGet, "/"+userID, nil), cookie)
	req = mux.SetURLVars(req, map[string]string{"userId": userID})
	rec := httptest.NewRecorder()
	hs.handler.UserList(context.Background(), rec, req)
	return rec
}

func TestRegisterValidation(t *testing.T) {
	hs := newHarness(t)
	hs.register(t, "taken@x.com", "password1")

	tests := []struct {
		name     string
		email    string
		password string
		confirm  string
		message  string
	}{
		{name: "short password", email: "a@x.com", password: "short", confirm: "short", message: "Password length must be greater than 7!"},
		{name: "mismatch", email: "a@x.com", password: "password1", confirm: "password2", message: "Passwords don&#39;t match!"},
		{name: "duplicate", email: "taken@x.com", password: "password1", confirm: "password1", message: "Email already exists!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			hs.handler.Register(context.Background(), rec, formRequest("/register", url.Values{
				"userMail":  {tt.email},
				"password":  {tt.password},
				"password2": {tt.confirm},
			}))
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}

	_, err := hs.users.FindByEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginScenario(t *testing.T) {
	hs := newHarness(t)
	hs.register(t, "a@x.com", "password1")
	hs.register(t, "b@x.com", "password2")

	cookie, location := hs.login(t, "a@x.com", "password1")
	userID := hs.userID(t, "a@x.com")
	assert.Equal(t, "/"+userID, location)

	rec := hs.getUserList(cookie, userID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.DefaultListTitle)

	rec = hs.getUserList(cookie, hs.userID(t, "b@x.com"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	list, err := hs.lists.GetOrCreate(context.Background(), userID)
	require.NoError(t, err)
	before := len(list.Items)

	req := withCookie(formRequest("/", url.Values{"listId": {list.ID}, "newTitle": {"eggs"}}), cookie)
	rec = httptest.NewRecorder()
	hs.handler.AddItem(hs.authenticated(t, req), rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/"+userID, rec.Header().Get("Location"))

	list, err = hs.lists.Get(context.Background(), list.ID)
	require.NoError(t, err)
	require.Len(t, list.Items, before+1)
	assert.Equal(t, "eggs", list.Items[len(list.Items)-1].Text)
}

func TestUserListRequiresSession(t *testing.T) {
	hs := newHarness(t)
	hs.register(t, "a@x.com", "password1")

	rec := hs.getUserList(nil, hs.userID(t, "a@x.com"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginFailures(t *testing.T) {
	hs := newHarness(t)
	hs.register(t, "a@x.com", "password1")

	tests := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{name: "wrong password", email: "a@x.com", password: "password2", message: accounts.MsgWrongPassword},
		{name: "unknown email", email: "nobody@x.com", password: "password1", message: accounts.MsgNotRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			hs.handler.Login(context.Background(), rec, formRequest("/login", url.Values{
				"userMail": {tt.email},
				"password": {tt.password},
			}))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestHomeShowsOwnList(t *testing.T) {
	hs := newHarness(t)

	rec := httptest.NewRecorder()
	hs.handler.Home(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	hs.register(t, "a@x.com", "password1")
	cookie, _ := hs.login(t, "a@x.com", "password1")

	rec = httptest.NewRecorder()
	hs.handler.Home(context.Background(), rec, withCookie(httptest.NewRequest(http.MethodGet, "/", nil), cookie))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.DefaultListTitle)
}

func TestAddItemRejectsForeignList(t *testing.T) {
	hs := newHarness(t)
	hs.register(t, "a@x.com", "password1")
	hs.register(t, "b@x.com", "password2")

	otherList, err := hs.lists.GetOrCreate(context.Background(), hs.userID(t, "b@x.com"))
	require.NoError(t, err)

	cookie, _ := hs.login(t, "a@x.com", "password1")
	req := withCookie(formRequest("/", url.Values{"listId": {otherList.ID}, "newTitle": {"eggs"}}), cookie)
	rec := httptest.NewRecorder()
	hs.handler.AddItem(hs.authenticated(t, req), rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	otherList, err = hs.lists.Get(context.Background(), otherList.ID)
	require.NoError(t, err)
	assert.Empty(t, otherList.Items)
}

func TestMutationsWithoutSessionRedirect(t *testing.T) {
	hs := newHarness(t)

	ok, _ := hs.sessions.Authenticate(formRequest("/", url.Values{"newTitle": {"eggs"}}))
	assert.False(t, ok)

	rec := httptest.NewRecorder()
	hs.handler.AddItem(context.Background(), rec, formRequest("/", url.Values{"newTitle": {"eggs"}}))
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	hs.handler.DeleteItem(context.Background(), rec, formRequest("/delete", url.Values{"checkbox": {"x"}}))
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	hs := newHarness(t)
	hs.register(t, "a@x.com", "password1")
	cookie, _ := hs.login(t, "a@x.com", "password1")
	userID := hs.userID(t, "a@x.com")

	list, err := hs.lists.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	milk, err := hs.lists.AddItem(ctx, list.ID, userID, "milk")
	require.NoError(t, err)
	eggs, err := hs.lists.AddItem(ctx, list.ID, userID, "eggs")
	require.NoError(t, err)

	req := withCookie(formRequest("/delete", url.Values{
		"checkbox": {" " + milk.ID + " "},
		"listName": {" " + list.Title + " "},
	}), cookie)
	req.Header.Set("Referer", "http://localhost:3000/"+userID)
	rec := httptest.NewRecorder()
	hs.handler.DeleteItem(hs.authenticated(t, req), rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/"+userID, rec.Header().Get("Location"))

	got, err := hs.lists.Get(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, eggs.ID, got.Items[0].ID)

	// unknown item leaves the list alone
	req = withCookie(formRequest("/delete", url.Values{"checkbox": {"missing"}, "listId": {list.ID}}), cookie)
	rec = httptest.NewRecorder()
	hs.handler.DeleteItem(hs.authenticated(t, req), rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)

	got, err = hs.lists.Get(ctx, list.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	req = withCookie(formRequest("/delete", url.Values{"checkbox": {eggs.ID}, "listName": {"Groceries"}}), cookie)
	rec = httptest.NewRecorder()
	hs.handler.DeleteItem(hs.authenticated(t, req), rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgListNotFound)
}

func TestLogout(t *testing.T) {
	hs := newHarness(t)
	hs.register(t, "a@x.com", "password1")
	cookie, _ := hs.login(t, "a@x.com", "password1")

	rec := httptest.NewRecorder()
	hs.handler.Logout(context.Background(), rec, withCookie(httptest.NewRequest(http.MethodGet, "/logout", nil), cookie))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	hs.handler.Home(context.Background(), rec, withCookie(httptest.NewRequest(http.MethodGet, "/", nil), cookie))
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// logging out without a session is harmless
	rec = httptest.NewRecorder()
	hs.handler.Logout(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLoggedInUsersAreSentToAlert(t *testing.T) {
	hs := newHarness(t)
	hs.register(t, "a@x.com", "password1")
	cookie, _ := hs.login(t, "a@x.com", "password1")

	for _, handle := range []httpserver.HandlerFunc{hs.handler.LoginForm, hs.handler.RegisterForm} {
		rec := httptest.NewRecorder()
		handle(context.Background(), rec, withCookie(httptest.NewRequest(http.MethodGet, "/login", nil), cookie))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/alert", rec.Header().Get("Location"))
	}

	rec := httptest.NewRecorder()
	hs.handler.Alert(context.Background(), rec, withCookie(httptest.NewRequest(http.MethodPost, "/alert", nil), cookie))
	assert.Equal(t, "/register", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	hs.handler.RegisterForm(context.Background(), rec, withCookie(httptest.NewRequest(http.MethodGet, "/register", nil), cookie))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome!")

	rec = hs.getUserList(cookie, hs.userID(t, "a@x.com"))
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestStaticPages(t *testing.T) {
	hs := newHarness(t)

	rec := httptest.NewRecorder()
	hs.handler.About(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	hs.handler.AlertPage(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/alert", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALERT")

	rec = httptest.NewRecorder()
	hs.handler.Health(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"healthy","service":"todo-service"}`, rec.Body.String())
}

func TestRefererPath(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{referer: "http://localhost:3000/u1", want: "/u1"},
		{referer: "", want: "/fallback"},
		{referer: "http://evil.example//evil.example/x", want: "/fallback"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/delete", nil)
		if tt.referer != "" {
			req.Header.Set("Referer", tt.referer)
		}
		assert.Equal(t, tt.want, refererPath(req, "/fallback"), tt.referer)
	}
}

func TestRequestFieldsNameSessionUser(t *testing.T) {
	fieldKeys := func(ctx context.Context) map[string]string {
		keys := map[string]string{}
		for _, f := range requestFields(ctx) {
			keys[f.Key] = f.String
		}
		return keys
	}

	anonymous := fieldKeys(context.Background())
	assert.Contains(t, anonymous, "route")
	assert.NotContains(t, anonymous, "user_id")

	ctx := session.WithSession(context.Background(), models.Session{LoggedIn: true, UserID: "u1"})
	assert.Equal(t, "u1", fieldKeys(ctx)["user_id"])
}
