package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/altklausuren/internal/app/controllers"
	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/models/dto"
	"github.com/yigit/altklausuren/internal/app/services"
	"github.com/yigit/altklausuren/internal/middleware"
	"github.com/yigit/altklausuren/internal/pkg/auth"
	"github.com/yigit/altklausuren/internal/pkg/metrics"
	"github.com/yigit/altklausuren/internal/pkg/session"
)

const (
	testUser     = "admin"
	testPassword = "geheim"
	cookieName   = "altklausuren.sid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router  *gin.Engine
	archive *archive
	store   *session.MemoryStore
}

func newTestEnv(t *testing.T, maxFileSize int64) *testEnv {
	t.Helper()

	hasher := auth.NewBcryptHasher(4)
	hash, err := hasher.Hash(testPassword)
	if err != nil {
		t.Fatal(err)
	}
	users := &fakeUserRepo{users: map[string]*models.User{
		testUser: {ID: 1, Username: testUser, PasswordHash: hash},
	}}

	a := &archive{}
	store := session.NewMemoryStore(time.Hour, 0)
	t.Cleanup(func() { _ = store.Close() })

	m := metrics.New()
	authService := services.NewAuthService(users, hasher, store, zerolog.Nop())
	tokens := auth.NewSessionTokenService(auth.TokenConfig{SecretKey: "test-secret", Issuer: "altklausuren"})
	sessions := middleware.NewSessionMiddleware(tokens, authService, middleware.CookieConfig{Name: cookieName})

	router := gin.New()
	router.Use(middleware.Metrics(m), sessions.LoadSession())
	SetupRouter(router,
		controllers.NewExamController(services.NewExamService(fakeExamRepo{a}), services.NewSolutionService(fakeSolutionRepo{a})),
		controllers.NewAuthController(authService, sessions, m),
		controllers.NewUploadController(services.NewUploadService(fakeTransactor{a}, maxFileSize, zerolog.Nop()), m, maxFileSize),
		controllers.NewHealthController(nil),
		sessions,
		maxFileSize,
	)

	return &testEnv{router: router, archive: a, store: store}
}

func (e *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, username, password string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	body, _ := json.Marshal(dto.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := e.do(req, cookies...)

	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return rec, c
		}
	}
	return rec, nil
}

func uploadRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".pdf")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestEmptySemesterListsAreArrays(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	for _, path := range []string{"/api/exams/1", "/api/solutions/1"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("GET %s body = %q, want []", path, rec.Body.String())
		}
	}
}

func TestUploadRequiresSession(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	req := uploadRequest(t, map[string]string{"name": "Mathe1", "fach": "Mathematik", "semester": "2"},
		map[string][]byte{"klausur": []byte("%PDF-exam")})
	rec := env.do(req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := decode[dto.MessageResponse](t, rec).Message; got != "Authentifizierung erforderlich" {
		t.Errorf("message = %q", got)
	}
	if len(env.archive.exams) != 0 {
		t.Error("unauthenticated upload stored an exam")
	}
}

func TestUploadListAndDownload(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	_, cookie := env.login(t, testUser, testPassword)
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}

	rec := env.do(uploadRequest(t,
		map[string]string{"name": "Mathe1", "fach": "Mathematik", "semester": "2"},
		map[string][]byte{"klausur": []byte("%PDF-exam"), "loesung": []byte("%PDF-solution")},
	), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	uploaded := decode[dto.UploadResponse](t, rec)
	if uploaded.Message != "Upload erfolgreich" || uploaded.KlausurID == 0 || uploaded.LoesungID == nil {
		t.Fatalf("unexpected upload response %+v", uploaded)
	}

	exams := decode[[]models.ExamMetadata](t, env.do(httptest.NewRequest(http.MethodGet, "/api/exams/2", nil)))
	if len(exams) != 1 || exams[0].Name != "Mathe1" || exams[0].Fach != "Mathematik" || exams[0].Semester != "2" {
		t.Fatalf("semester 2 exams = %+v", exams)
	}
	if other := decode[[]models.ExamMetadata](t, env.do(httptest.NewRequest(http.MethodGet, "/api/exams/3", nil))); len(other) != 0 {
		t.Errorf("semester 3 exams = %+v, want none", other)
	}

	solutions := decode[[]models.SolutionMetadata](t, env.do(httptest.NewRequest(http.MethodGet, "/api/solutions/2", nil)))
	if len(solutions) != 1 || solutions[0].ExamID != uploaded.KlausurID || solutions[0].Name != "Mathe1" {
		t.Fatalf("semester 2 solutions = %+v", solutions)
	}

	pdf := env.do(httptest.NewRequest(http.MethodGet, "/klausuren/1/pdf", nil))
	if pdf.Code != http.StatusOK || pdf.Body.String() != "%PDF-exam" {
		t.Fatalf("exam pdf = %d %q", pdf.Code, pdf.Body.String())
	}
	if ct := pdf.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := pdf.Header().Get("Content-Disposition"); cd != `attachment; filename="Mathe1.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	sol := env.do(httptest.NewRequest(http.MethodGet, "/loesungen/1/pdf", nil))
	if cd := sol.Header().Get("Content-Disposition"); cd != `attachment; filename="Mathe1_Loesung.pdf"` {
		t.Errorf("solution Content-Disposition = %q", cd)
	}
}

func TestUploadWithoutSolutionReturnsNullID(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	_, cookie := env.login(t, testUser, testPassword)

	rec := env.do(uploadRequest(t,
		map[string]string{"name": "Info3", "fach": "Informatik", "semester": "3"},
		map[string][]byte{"klausur": []byte("%PDF")},
	), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if v, ok := raw["loesungId"]; !ok || v != nil {
		t.Errorf("loesungId = %v (present %v), want null", v, ok)
	}
	if len(env.archive.solutions) != 0 {
		t.Errorf("solutions stored: %d", len(env.archive.solutions))
	}
}

func TestUploadValidationStoresNothing(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	_, cookie := env.login(t, testUser, testPassword)

	tests := []struct {
		name    string
		fields  map[string]string
		files   map[string][]byte
		message string
	}{
		{
			name:    "missing fach",
			fields:  map[string]string{"name": "Mathe1", "semester": "2"},
			files:   map[string][]byte{"klausur": []byte("%PDF")},
			message: "Name, Fach und Semester sind erforderlich.",
		},
		{
			name:    "blank name",
			fields:  map[string]string{"name": "   ", "fach": "Mathematik", "semester": "2"},
			files:   map[string][]byte{"klausur": []byte("%PDF")},
			message: "Name, Fach und Semester sind erforderlich.",
		},
		{
			name:    "missing exam file",
			fields:  map[string]string{"name": "Mathe1", "fach": "Mathematik", "semester": "2"},
			files:   map[string][]byte{"loesung": []byte("%PDF")},
			message: "Klausur-PDF ist erforderlich.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(uploadRequest(t, tt.fields, tt.files), cookie)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if got := decode[dto.MessageResponse](t, rec).Message; got != tt.message {
				t.Errorf("message = %q, want %q", got, tt.message)
			}
		})
	}

	if len(env.archive.exams) != 0 || len(env.archive.solutions) != 0 {
		t.Errorf("rejected uploads stored rows: %d exams, %d solutions", len(env.archive.exams), len(env.archive.solutions))
	}
}

func TestUploadRollsBackWhenSolutionFails(t *testing.T) {
	env := newTestEnv(t, 1<<20)
	_, cookie := env.login(t, testUser, testPassword)
	env.archive.failSolutions = true

	rec := env.do(uploadRequest(t,
		map[string]string{"name": "Mathe1", "fach": "Mathematik", "semester": "2"},
		map[string][]byte{"klausur": []byte("%PDF-exam"), "loesung": []byte("%PDF-solution")},
	), cookie)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decode[dto.ErrorResponse](t, rec).Error; got != "Server-Fehler beim Verarbeiten des Uploads" {
		t.Errorf("error = %q", got)
	}
	if len(env.archive.exams) != 0 {
		t.Error("exam survived a failed solution insert")
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t, 16)
	_, cookie := env.login(t, testUser, testPassword)

	rec := env.do(uploadRequest(t,
		map[string]string{"name": "Mathe1", "fach": "Mathematik", "semester": "2"},
		map[string][]byte{"klausur": bytes.Repeat([]byte("x"), 64)},
	), cookie)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if len(env.archive.exams) != 0 {
		t.Error("oversized upload stored an exam")
	}
}

func TestMissingPDFIsNotFound(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	for _, path := range []string{"/klausuren/999/pdf", "/loesungen/999/pdf"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
		if rec.Body.String() != "Nicht gefunden." {
			t.Errorf("GET %s body = %q", path, rec.Body.String())
		}
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/klausuren/abc/pdf", nil))
	if rec.Code != http.StatusBadRequest || rec.Body.String() != "Ungültige ID" {
		t.Errorf("non-numeric id = %d %q", rec.Code, rec.Body.String())
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	wrongPassword, cookie := env.login(t, testUser, "falsch")
	if cookie != nil {
		t.Error("failed login set a cookie")
	}
	unknownUser, _ := env.login(t, "ghost", testPassword)

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d / %d, want 401", wrongPassword.Code, unknownUser.Code)
	}
	if wrongPassword.Body.String() != unknownUser.Body.String() {
		t.Errorf("bodies differ: %q vs %q", wrongPassword.Body.String(), unknownUser.Body.String())
	}

	missing, _ := env.login(t, "", "")
	if missing.Code != http.StatusBadRequest {
		t.Errorf("empty credentials status = %d, want 400", missing.Code)
	}
}

func TestLoginStatusLogoutCycle(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	status := func(cookies ...*http.Cookie) dto.AuthStatusResponse {
		return decode[dto.AuthStatusResponse](t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), cookies...))
	}

	if s := status(); s.Authenticated {
		t.Fatal("anonymous caller reported as authenticated")
	}

	rec, cookie := env.login(t, testUser, testPassword)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	login := decode[dto.LoginResponse](t, rec)
	if !login.Success || login.Message != "Login erfolgreich" || login.UserID != 1 || login.Username != testUser {
		t.Errorf("unexpected login response %+v", login)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	if s := status(cookie); !s.Authenticated || s.Username != testUser {
		t.Fatalf("status after login = %+v", s)
	}

	out := env.do(httptest.NewRequest(http.MethodPost, "/api/logout", nil), cookie)
	if out.Code != http.StatusOK {
		t.Fatalf("logout status = %d", out.Code)
	}
	if got := decode[dto.LogoutResponse](t, out); !got.Success || got.Message != "Logout erfolgreich" {
		t.Errorf("unexpected logout response %+v", got)
	}

	// the old cookie must not revive the destroyed session
	if s := status(cookie); s.Authenticated {
		t.Error("session still active after logout")
	}
	if env.store.Len() != 0 {
		t.Errorf("store holds %d sessions after logout", env.store.Len())
	}
}

func TestReloginReplacesPreviousSession(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	_, first := env.login(t, testUser, testPassword)
	if first == nil {
		t.Fatal("first login did not set a cookie")
	}
	rec, second := env.login(t, testUser, testPassword, first)
	if rec.Code != http.StatusOK || second == nil {
		t.Fatalf("second login = %d, cookie %v", rec.Code, second)
	}

	if env.store.Len() != 1 {
		t.Errorf("store holds %d sessions, want 1", env.store.Len())
	}

	status := func(c *http.Cookie) bool {
		return decode[dto.AuthStatusResponse](t, env.do(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), c)).Authenticated
	}
	if status(first) {
		t.Error("replaced session cookie still authenticates")
	}
	if !status(second) {
		t.Error("new session cookie does not authenticate")
	}
}

func TestForgedCookieIsAnonymous(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	forged := &http.Cookie{Name: cookieName, Value: "not-a-token"}
	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/status", nil), forged)
	if decode[dto.AuthStatusResponse](t, rec).Authenticated {
		t.Error("forged cookie accepted")
	}
}

func TestHealthWithoutDatabase(t *testing.T) {
	env := newTestEnv(t, 1<<20)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if h := decode[dto.HealthResponse](t, rec); h.Status != "degraded" || h.Database {
		t.Errorf("unexpected health %+v", h)
	}

	ping := env.do(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if ping.Code != http.StatusOK || decode[dto.MessageResponse](t, ping).Message != "pong" {
		t.Errorf("ping = %d %q", ping.Code, ping.Body.String())
	}
}

func TestUploadBodyLimit(t *testing.T) {
	if got := UploadBodyLimit(10 << 20); got != 21<<20 {
		t.Errorf("UploadBodyLimit(10MiB) = %d, want %d", got, 21<<20)
	}
}

func TestSetupStaticServesLandingPage(t *testing.T) {
	router := gin.New()
	SetupStatic(router, fstest.MapFS{
		"homePage.html":  {Data: []byte("<h1>Altklausuren</h1>")},
		"client-side.js": {Data: []byte("console.log(1)")},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "<h1>Altklausuren</h1>" {
		t.Fatalf("GET / = %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/client-side.js", nil))
	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK || string(body) != "console.log(1)" {
		t.Errorf("GET /static/client-side.js = %d %q", rec.Code, body)
	}
}

func TestSetupMetricsExposesCounters(t *testing.T) {
	m := metrics.New()
	m.UploadCompleted(true)

	router := gin.New()
	SetupMetrics(router, m)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "uploads_total") {
		t.Errorf("uploads counter missing from exposition")
	}
}
