package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklist/tasklist/internal/metrics"
	"github.com/tasklist/tasklist/internal/model"
	"github.com/tasklist/tasklist/internal/service"
	"github.com/tasklist/tasklist/internal/session"
	"github.com/tasklist/tasklist/internal/testutil"
	"github.com/tasklist/tasklist/internal/view"
)

type testApp struct {
	server   *httptest.Server
	store    *testutil.MemoryStore
	recorder *metrics.InMemoryRecorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := testutil.NewMemoryStore()
	recorder := metrics.NewInMemory()

	tmpl, err := view.New()
	require.NoError(t, err)

	sessions := session.NewManager(
		session.NewCookieStore([]byte(strings.Repeat("k", 32)), time.Hour),
		session.Config{CookieName: "tasklist_session", TTL: time.Hour},
	)

	pages := New(tmpl, logger, false)
	hs := Handlers{
		Pages:    pages,
		Accounts: NewAccountHandler(pages, service.NewAccountService(store, recorder, logger), sessions, recorder, logger),
		Todos:    NewTodoHandler(pages, service.NewTodoService(store, recorder), logger),
		Health:   NewHealthHandler(store, nil, logger),
	}

	router, err := NewRouter(hs, RouterConfig{
		Logger:             logger,
		Metrics:            recorder,
		Sessions:           sessions,
		IsDevelopment:      true,
		MaxRequestBodySize: 1 << 16,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{server: srv, store: store, recorder: recorder}
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t      *testing.T
	app    *testApp
	client *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:   t,
		app: a,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	status   int
	location string
	body     string
}

func (b *browser) do(req *http.Request) response {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (b *browser) get(path string) response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.server.URL+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) signup(username, password string) response {
	b.t.Helper()
	return b.post("/signup", url.Values{"username": {username}, "password": {password}})
}

func (b *browser) login(username, password string) response {
	b.t.Helper()
	return b.post("/login", url.Values{"username": {username}, "password": {password}})
}

func (b *browser) addTodo(content string) response {
	b.t.Helper()
	return b.post("/todos", url.Values{"content": {content}})
}

var todoRowPattern = regexp.MustCompile(`<td>([^<]*)</td>`)
var editLinkPattern = regexp.MustCompile(`href="/update/(\d+)"`)

// listContents returns the rendered todo contents in page order.
func listContents(body string) []string {
	var out []string
	for _, m := range todoRowPattern.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return out
}

func firstTodoID(t *testing.T, body string) int64 {
	t.Helper()
	m := editLinkPattern.FindStringSubmatch(body)
	require.NotNil(t, m, "no todo rendered")
	id, err := strconv.ParseInt(m[1], 10, 64)
	require.NoError(t, err)
	return id
}

func assertRedirect(t *testing.T, resp response, location string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, location, resp.location)
}

func TestScenario_AliceBuysMilk(t *testing.T) {
	app := newTestApp(t)
	alice := app.browser(t)

	assertRedirect(t, alice.signup("alice", "pw1"), "/login")
	assertRedirect(t, alice.login("alice", "pw1"), "/todos")
	assertRedirect(t, alice.addTodo("Buy milk"), "/todos")

	list := alice.get("/todos")
	require.Equal(t, http.StatusOK, list.status)
	assert.Equal(t, []string{"Buy milk"}, listContents(list.body))
}

func TestScenario_BobCannotDeleteAlicesTodo(t *testing.T) {
	app := newTestApp(t)
	alice := app.browser(t)
	bob := app.browser(t)

	alice.signup("alice", "pw1")
	alice.login("alice", "pw1")
	alice.addTodo("Buy milk")
	id := firstTodoID(t, alice.get("/todos").body)

	bob.signup("bob", "pw2")
	assertRedirect(t, bob.login("bob", "pw2"), "/todos")

	assertRedirect(t, bob.get("/delete/"+strconv.FormatInt(id, 10)), "/todos")
	assert.Equal(t, []string{"Buy milk"}, listContents(alice.get("/todos").body))
	assert.Empty(t, listContents(bob.get("/todos").body), "alice's items are not visible to bob")

	// Editing is refused the same way.
	assertRedirect(t, bob.get("/update/"+strconv.FormatInt(id, 10)), "/todos")
	assertRedirect(t, bob.post("/update/"+strconv.FormatInt(id, 10), url.Values{"content": {"Hijacked"}}), "/todos")
	assertRedirect(t, bob.post("/update/"+strconv.FormatInt(id, 10), url.Values{"content": {""}}), "/todos")
	assert.Equal(t, []string{"Buy milk"}, listContents(alice.get("/todos").body))

	assert.Equal(t, uint64(1), app.recorder.Snapshot().OwnershipDenied["delete"])
}

func TestScenario_OwnerUpdatesOldToNew(t *testing.T) {
	app := newTestApp(t)
	alice := app.browser(t)

	alice.signup("alice", "pw1")
	alice.login("alice", "pw1")
	alice.addTodo("Old")
	id := strconv.FormatInt(firstTodoID(t, alice.get("/todos").body), 10)

	edit := alice.get("/update/" + id)
	require.Equal(t, http.StatusOK, edit.status)
	assert.Contains(t, edit.body, `value="Old"`)

	assertRedirect(t, alice.post("/update/"+id, url.Values{"content": {"New"}}), "/todos")
	assertRedirect(t, alice.post("/update/"+id, url.Values{"content": {"New"}}), "/todos")

	assert.Equal(t, []string{"New"}, listContents(alice.get("/todos").body))
}

func TestSignup_NeverAuthenticates(t *testing.T) {
	app := newTestApp(t)
	carol := app.browser(t)

	resp := carol.signup("carol", "pw")
	assertRedirect(t, resp, "/login")

	login := carol.get("/login")
	assert.Contains(t, login.body, "Account created, please login")

	assertRedirect(t, carol.get("/todos"), "/login")
	assert.Equal(t, 1, app.store.UserCount())
}

func TestSignup_DuplicateShowsMessage(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	b.signup("alice", "pw1")
	resp := b.signup("alice", "different")

	assert.Equal(t, http.StatusConflict, resp.status)
	assert.Contains(t, resp.body, "Username already exists")
	assert.Equal(t, 1, app.store.UserCount())
}

func TestSignup_InvalidInput(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	resp := b.signup("   ", "pw")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, msgInvalidUsername)

	resp = b.signup("dave", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, msgInvalidPassword)
	assert.Contains(t, resp.body, `value="dave"`, "username is kept")

	assert.Equal(t, 0, app.store.UserCount())
}

func TestLogin_GenericFailure(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.signup("alice", "pw1")

	wrongPassword := b.login("alice", "nope")
	unknownUser := b.login("mallory", "pw1")

	for _, resp := range []response{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusUnauthorized, resp.status)
		assert.Contains(t, resp.body, msgInvalidCredentials)
	}
	assert.Equal(t,
		strings.Replace(wrongPassword.body, `value="alice"`, "", 1),
		strings.Replace(unknownUser.body, `value="mallory"`, "", 1),
		"failure pages differ only in the echoed username")

	assertRedirect(t, b.get("/todos"), "/login")
}

func TestLogout_ClearsSession(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.signup("alice", "pw1")
	b.login("alice", "pw1")

	require.Equal(t, http.StatusOK, b.get("/todos").status)

	assertRedirect(t, b.get("/logout"), "/login")
	assertRedirect(t, b.get("/todos"), "/login")

	// Logging out while anonymous is harmless.
	assertRedirect(t, b.get("/logout"), "/login")
	assert.Equal(t, uint64(1), app.recorder.Snapshot().Logouts)
}

func TestAuthRequiredRoutes(t *testing.T) {
	app := newTestApp(t)
	anon := app.browser(t)

	for _, path := range []string{"/todos", "/delete/1", "/update/1"} {
		assertRedirect(t, anon.get(path), "/login")
	}
	assertRedirect(t, anon.addTodo("sneaky"), "/login")
	assertRedirect(t, anon.post("/update/1", url.Values{"content": {"x"}}), "/login")
	assert.Equal(t, 0, app.store.TodoCount())
}

func TestTodos_NewestFirstAndPerOwner(t *testing.T) {
	app := newTestApp(t)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	app.store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	alice := app.browser(t)
	alice.signup("alice", "pw1")
	alice.login("alice", "pw1")
	alice.addTodo("first")
	alice.addTodo("second")
	alice.addTodo("third")

	bob := app.browser(t)
	bob.signup("bob", "pw2")
	bob.login("bob", "pw2")
	bob.addTodo("bobs only")

	assert.Equal(t, []string{"third", "second", "first"}, listContents(alice.get("/todos").body))
	assert.Equal(t, []string{"bobs only"}, listContents(bob.get("/todos").body))
}

func TestTodos_InvalidContent(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.signup("alice", "pw1")
	b.login("alice", "pw1")

	resp := b.addTodo("   ")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, msgContentRequired)

	long := strings.Repeat("x", model.MaxTodoContentLength+1)
	resp = b.addTodo(long)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, msgContentTooLong)
	assert.Equal(t, 0, app.store.TodoCount())

	b.addTodo("Valid")
	id := strconv.FormatInt(firstTodoID(t, b.get("/todos").body), 10)

	resp = b.post("/update/"+id, url.Values{"content": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, msgContentRequired)
	assert.Equal(t, []string{"Valid"}, listContents(b.get("/todos").body))
}

func TestUnstorableInput_RerendersForms(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	resp := b.signup("milk\xff", "pw")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, msgInvalidUsername)
	resp = b.signup("x\x00", "pw")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Equal(t, 0, app.store.UserCount())

	resp = b.login("x\x00", "pw")
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Contains(t, resp.body, msgInvalidCredentials)

	b.signup("alice", "pw1")
	b.login("alice", "pw1")

	for _, content := range []string{"milk\x00", "milk\xff"} {
		resp = b.addTodo(content)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.status, "%q", content)
		assert.Contains(t, resp.body, msgContentInvalid)
	}
	assert.Equal(t, 0, app.store.TodoCount())

	b.addTodo("Valid")
	id := strconv.FormatInt(firstTodoID(t, b.get("/todos").body), 10)
	resp = b.post("/update/"+id, url.Values{"content": {"oat\x00milk"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Contains(t, resp.body, msgContentInvalid)
	assert.Equal(t, []string{"Valid"}, listContents(b.get("/todos").body))
}

func TestDelete_TwiceIsSilent(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.signup("alice", "pw1")
	b.login("alice", "pw1")
	b.addTodo("Buy milk")
	id := strconv.FormatInt(firstTodoID(t, b.get("/todos").body), 10)

	assertRedirect(t, b.get("/delete/"+id), "/todos")
	assertRedirect(t, b.get("/delete/"+id), "/todos")
	assert.Equal(t, 0, app.store.TodoCount())
	assert.Equal(t, uint64(1), app.recorder.Snapshot().TodosDeleted)
}

func TestMalformedIDsRedirect(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.signup("alice", "pw1")
	b.login("alice", "pw1")

	for _, path := range []string{"/delete/abc", "/delete/0", "/delete/-4", "/update/abc", "/update/99999999999999999999"} {
		assertRedirect(t, b.get(path), "/todos")
	}
}

func TestForgedSessionCookieIsAnonymous(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	u, err := url.Parse(app.server.URL)
	require.NoError(t, err)
	b.client.Jar.SetCookies(u, []*http.Cookie{{Name: "tasklist_session", Value: "not-a-jwt", Path: "/"}})

	assertRedirect(t, b.get("/todos"), "/login")
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	app := newTestApp(t)
	resp := app.browser(t).get("/no/such/page")

	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.body, "404 Not Found")
}

func TestSecurityHeadersOnPages(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_PanicRendersErrorPage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tmpl, err := view.New()
	require.NoError(t, err)
	pages := New(tmpl, logger, false)

	r, err := NewRouter(Handlers{
		Pages:    pages,
		Accounts: &AccountHandler{pages: pages},
		Todos:    &TodoHandler{pages: pages},
		Health:   NewHealthHandler(nil, nil, logger),
	}, RouterConfig{Logger: logger, Sessions: nopSessions{}})
	require.NoError(t, err)
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("500")))
}

type nopSessions struct{}

func (nopSessions) CurrentUser(r *http.Request) (*model.UserRef, error) { return nil, nil }
