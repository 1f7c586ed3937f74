package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BernardRegaspi/portfolio/internal/config"
	"github.com/BernardRegaspi/portfolio/internal/content"
	"github.com/BernardRegaspi/portfolio/internal/db"
	"github.com/BernardRegaspi/portfolio/internal/logging"
	"github.com/BernardRegaspi/portfolio/internal/relay"
	"github.com/BernardRegaspi/portfolio/internal/transition"
	"github.com/BernardRegaspi/portfolio/internal/visitstore"
)

type fakeRelay struct {
	mu   sync.Mutex
	err  error
	sent []relay.Message
}

func (f *fakeRelay) Send(_ context.Context, m relay.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return f.err
}

type testEnv struct {
	srv   *Server
	db    *db.DB
	relay *fakeRelay
	jar   []*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Mode = "test"
	cfg.Server.TemplatesDir = "../../templates"
	cfg.Server.StaticDir = "../../static"
	cfg.Server.ImagesDir = "../../static"
	cfg.Admin.Username = "bernard"
	cfg.Admin.Password = "s3cret"

	store, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	site, err := content.Load()
	require.NoError(t, err)

	fr := &fakeRelay{}
	srv, err := New(Deps{
		Config:  cfg,
		DB:      store,
		Visits:  visitstore.NewMemory(),
		Relay:   fr,
		Content: site,
	})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, db: store, relay: fr}
}

// do sends req with the cookies collected so far and keeps any new ones.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range e.jar {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		e.jar = upsertCookie(e.jar, c)
	}
	return rec
}

func upsertCookie(jar []*http.Cookie, c *http.Cookie) []*http.Cookie {
	for i, existing := range jar {
		if existing.Name == c.Name {
			if c.MaxAge < 0 {
				return append(jar[:i], jar[i+1:]...)
			}
			jar[i] = c
			return jar
		}
	}
	return append(jar, c)
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func preloaderOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code)
	switch {
	case strings.Contains(rec.Body.String(), `data-preloader="full"`):
		return "full"
	case strings.Contains(rec.Body.String(), `data-preloader="short"`):
		return "short"
	}
	t.Fatalf("no preloader in page")
	return ""
}

func TestHomeSetsSessionCookie(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, e.jar, 1)
	c := e.jar[0]
	assert.Equal(t, "portfolio_session", c.Name)
	assert.Zero(t, c.MaxAge, "session cookie must not outlive the browser session")
	assert.True(t, c.HttpOnly)

	e.get("/")
	assert.Len(t, e.jar, 1)
	assert.Equal(t, c.Value, e.jar[0].Value)
}

func TestPreloaderAcrossSession(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, "full", preloaderOf(t, e.get("/")))
	// Still full until the sequence is reported complete.
	assert.Equal(t, "full", preloaderOf(t, e.get("/")))

	rec := e.postJSON("/api/session/preloader-complete", `{"variant":"full"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "short", preloaderOf(t, e.get("/")))

	// Leaving a service page does not count as a reload.
	rec = e.postJSON("/api/session/unload", `{"path":"/graphic-design"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "short", preloaderOf(t, e.get("/")))

	// Unloading home does, and resets the session.
	rec = e.postJSON("/api/session/unload", `{"path":"/"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "full", preloaderOf(t, e.get("/")))

	rec = e.get("/api/session/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasSeenFullPreloader":false,"isPageReload":false}`, rec.Body.String())
}

func TestReloadCookieWinsOverLateBeacon(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, "full", preloaderOf(t, e.get("/")))
	require.Equal(t, http.StatusNoContent, e.postJSON("/api/session/preloader-complete", `{"variant":"full"}`).Code)
	assert.Equal(t, "short", preloaderOf(t, e.get("/")))

	// Hard reload of home: the cookie is on the GET, the beacon lands after it.
	e.jar = append(e.jar, &http.Cookie{Name: reloadCookie, Value: "tok1"})
	assert.Equal(t, "full", preloaderOf(t, e.get("/")))
	for _, c := range e.jar {
		assert.NotEqual(t, reloadCookie, c.Name, "reload marker must be cleared")
	}
	require.Equal(t, http.StatusNoContent, e.postJSON("/api/session/unload", `{"path":"/","token":"tok1"}`).Code)

	require.Equal(t, http.StatusNoContent, e.postJSON("/api/session/preloader-complete", `{"variant":"full"}`).Code)
	e.get("/graphic-design")
	assert.Equal(t, "short", preloaderOf(t, e.get("/")), "late beacon must not count as a second reload")

	rec := e.get("/api/session/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasSeenFullPreloader":true,"isPageReload":false}`, rec.Body.String())
}

func TestReloadBeaconBeforeCookie(t *testing.T) {
	e := newTestEnv(t)
	e.get("/")
	e.postJSON("/api/session/preloader-complete", `{"variant":"full"}`)

	require.Equal(t, http.StatusNoContent, e.postJSON("/api/session/unload", `{"path":"/","token":"tok2"}`).Code)
	e.jar = append(e.jar, &http.Cookie{Name: reloadCookie, Value: "tok2"})
	assert.Equal(t, "full", preloaderOf(t, e.get("/")))

	e.postJSON("/api/session/preloader-complete", `{"variant":"full"}`)
	assert.Equal(t, "short", preloaderOf(t, e.get("/")))
}

func TestPreloaderSessionsAreIsolated(t *testing.T) {
	a := newTestEnv(t)
	a.get("/")
	a.postJSON("/api/session/preloader-complete", `{"variant":"full"}`)
	assert.Equal(t, "short", preloaderOf(t, a.get("/")))

	b := &testEnv{srv: a.srv}
	assert.Equal(t, "full", preloaderOf(t, b.get("/")))
}

func TestSessionAPIRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, e.postJSON("/api/session/unload", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.postJSON("/api/session/preloader-complete", `{"variant":"medium"}`).Code)
}

func TestInitialOverlayState(t *testing.T) {
	e := newTestEnv(t)

	home := e.get("/").Body.String()
	assert.NotContains(t, home, "block is-covered")
	assert.Contains(t, home, `id="transition-plan"`)

	for _, path := range []string{"/fullstack-development", "/graphic-design", "/mobile-development", "/virtual-assistant"} {
		rec := e.get(path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, 10, strings.Count(rec.Body.String(), "block is-covered"), path)
	}
}

func TestServicePageListsProjects(t *testing.T) {
	e := newTestEnv(t)
	site, err := content.Load()
	require.NoError(t, err)

	body := e.get("/fullstack-development").Body.String()
	for _, p := range site.ProjectsFor("fullstack") {
		assert.Contains(t, body, `id="project-`+p.ID+`"`)
	}
}

func TestOverlayBlocksScaleVertically(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/static/css/site.css", "/static/js/transition.js"} {
		rec := e.get(path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "scaleY(", path)
		assert.NotContains(t, rec.Body.String(), "scaleX(", path)
	}
}

func TestServicePageGallery(t *testing.T) {
	e := newTestEnv(t)

	body := e.get("/fullstack-development").Body.String()

	assert.Equal(t, 1, strings.Count(body, "data-lightbox role="))
	assert.Contains(t, body, `/static/js/gallery.js`)
	assert.Contains(t, body, `data-gallery-src="/images/fullstack-projects/EmployeeMonitoring/Admin.png"`)
	// the cover opens on its own slide, third in the Employee Monitoring gallery
	assert.Contains(t, body, `data-gallery-open="2" aria-label="View Employee Monitoring System screenshots"`)
	assert.Contains(t, body, `class="badge badge-featured"`)

	empty := e.get("/virtual-assistant").Body.String()
	assert.Contains(t, empty, "Projects coming soon.")
	assert.NotContains(t, empty, "data-gallery-src")
}

func TestHomeRendersCertificatesAndTools(t *testing.T) {
	e := newTestEnv(t)

	body := e.get("/").Body.String()

	assert.Contains(t, body, `src="/images/certificates/nodejs.jpg"`)
	assert.Contains(t, body, `href="https://coursera.org/verify/certificate"`)
	assert.Contains(t, body, "View credential")
	assert.Contains(t, body, `style="--tool-color: #31A8FF"`)
}

func TestLegacyAliasRedirects(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/virtual-analyst")

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/virtual-assistant", rec.Header().Get("Location"))
}

func TestNotFoundPage(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
	assert.Contains(t, rec.Body.String(), "block is-covered")
}

func TestTransitionPlanEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/api/transition/plan")
	require.Equal(t, http.StatusOK, rec.Code)

	var plan transition.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, 2, plan.Rows)
	assert.Equal(t, 5, plan.Cols)
	assert.Equal(t, "/", plan.HomePath)
	assert.EqualValues(t, 200, plan.RevealDelayMS)
	assert.Equal(t, "power4.inOut", plan.Cover.Ease)
	assert.Equal(t, "power3.inOut", plan.Reveal.Ease)
	assert.InDelta(t, 1.4, plan.Cover.Total, 1e-9)
	assert.InDelta(t, 1.28, plan.Reveal.Total, 1e-9)
	assert.Len(t, plan.Cover.Delays, 10)
}

func contactValues() url.Values {
	return url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"subject": {"Website"},
		"message": {"I need a landing page."},
		"source":  {"/fullstack-development"},
	}
}

func TestContactSuccess(t *testing.T) {
	e := newTestEnv(t)

	rec := e.postForm("/contact", contactValues())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Message sent successfully!")
	require.Len(t, e.relay.sent, 1)
	assert.Equal(t, relay.Message{Name: "Ada", Email: "ada@example.com", Subject: "Website", Body: "I need a landing page."}, e.relay.sent[0])

	msgs, err := e.db.Messages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Delivered)
	assert.Equal(t, "/fullstack-development", msgs[0].Source)
}

func TestContactRelayFailure(t *testing.T) {
	e := newTestEnv(t)
	e.relay.err = errors.New("upstream down")

	rec := e.postForm("/contact", contactValues())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong. Please try again.")

	msgs, err := e.db.Messages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Delivered)
	assert.Equal(t, "upstream down", msgs[0].Error)
}

func TestContactValidation(t *testing.T) {
	e := newTestEnv(t)
	form := contactValues()
	form.Set("email", "not-an-email")

	rec := e.postForm("/contact", form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "valid email address")
	assert.Empty(t, e.relay.sent)
}

func TestVisitorTracking(t *testing.T) {
	e := newTestEnv(t)

	e.get("/")
	e.get("/graphic-design")
	dnt := httptest.NewRequest(http.MethodGet, "/mobile-development", nil)
	dnt.Header.Set("DNT", "1")
	e.do(dnt)
	e.get("/api/session/state")
	e.get("/static/css/site.css")
	e.srv.bg.Wait()

	visitors, err := e.db.Visitors(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, visitors, 2)
	paths := []string{visitors[0].Path, visitors[1].Path}
	assert.ElementsMatch(t, []string{"/", "/graphic-design"}, paths)
	for _, v := range visitors {
		assert.Len(t, v.HashedIP, 16)
		assert.NotContains(t, v.HashedIP, "192.0.2.1")
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/admin/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	rec = e.postForm("/admin/login", url.Values{"username": {"bernard"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestAdminArea(t *testing.T) {
	e := newTestEnv(t)
	e.postForm("/contact", contactValues())
	e.get("/")
	e.srv.bg.Wait()

	rec := e.postForm("/admin/login", url.Values{"username": {"bernard"}, "password": {"s3cret"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	rec = e.get("/admin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard")

	rec = e.get("/admin/messages")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "I need a landing page.")

	rec = e.get("/admin/export/stats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "admin-stats.json")
	var stats db.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.TotalMessages)
	assert.EqualValues(t, 1, stats.TotalVisitors)

	msgs, err := e.db.Messages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	del := func(id string) int {
		return e.do(httptest.NewRequest(http.MethodDelete, "/admin/messages/"+id, nil)).Code
	}
	assert.Equal(t, http.StatusOK, del(strconv.FormatInt(msgs[0].ID, 10)))
	assert.Equal(t, http.StatusNotFound, del(strconv.FormatInt(msgs[0].ID, 10)))
	assert.Equal(t, http.StatusBadRequest, del("abc"))

	rec = e.get("/admin/logout")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, http.StatusFound, e.get("/admin/dashboard").Code)
}

func TestAdminDisabledWithoutCredentialsInRelease(t *testing.T) {
	a, err := newAdminAuth(config.AdminConfig{}, "release", logging.NewNop())
	require.NoError(t, err)
	assert.False(t, a.enabled)
	assert.False(t, a.check("", ""))
	assert.False(t, a.check(devAdminUsername, devAdminPassword))

	a, err = newAdminAuth(config.AdminConfig{}, "debug", logging.NewNop())
	require.NoError(t, err)
	assert.True(t, a.check(devAdminUsername, devAdminPassword))
}

func TestHashIP(t *testing.T) {
	assert.Equal(t, hashIP("salt", "10.0.0.1"), hashIP("salt", "10.0.0.1"))
	assert.NotEqual(t, hashIP("salt", "10.0.0.1"), hashIP("pepper", "10.0.0.1"))
	assert.Len(t, hashIP("salt", "10.0.0.1"), 16)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)
	e.get("/")
	e.get("/api/transition/plan")

	rec := e.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = e.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `portfolio_page_views_total{route="/"} 1`)
	assert.Contains(t, body, `portfolio_preloader_starts_total{variant="full"} 1`)
	assert.Contains(t, body, "portfolio_transition_plan_requests_total 1")
}

func TestPrivacyPage(t *testing.T) {
	e := newTestEnv(t)

	rec := e.get("/privacy")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Privacy Policy")
}
