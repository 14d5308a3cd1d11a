package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/willsigmon/boppa/config"
	"github.com/willsigmon/boppa/internal/api/http/handler"
	"github.com/willsigmon/boppa/internal/api/http/middleware"
	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/internal/service/contact"
	"github.com/willsigmon/boppa/internal/service/user"
	"github.com/willsigmon/boppa/internal/storage"
	"github.com/willsigmon/boppa/pkg/database"
	"github.com/willsigmon/boppa/pkg/util/password"
)

type testEnv struct {
	app   *fiber.App
	users *user.UserService
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	drv, err := database.NewEntDriverFromConfig(database.Config{
		Driver: config.DriverSQLite,
		Path:   ":memory:",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { drv.Close() })
	if err := database.Migrate(context.Background(), drv, schema.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := storage.NewDatabaseStorage(drv)
	users := user.New(store, password.NewHasher(password.Config{
		MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	}))

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	NewRouter(Params{
		Cfg:        cfg,
		DB:         drv,
		ContactSvc: contact.New(store, nil),
		UserSvc:    users,
	}).Register(app)

	return &testEnv{app: app, users: users}
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  []schema.FieldError `json:"errors"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func (e *testEnv) api(t *testing.T, method, target, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")

	resp, raw := e.do(t, req)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %s %s: %v (%s)", method, target, err, raw)
	}
	return resp.StatusCode, env
}

// assertRejection checks a middleware rejection uses the handlers' envelope:
// exactly {success:false, message}.
func assertRejection(t *testing.T, raw []byte, wantMsg string) {
	t.Helper()
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("decode rejection: %v (%s)", err, raw)
	}
	if len(fields) != 2 || string(fields["success"]) != "false" {
		t.Errorf("rejection fields = %s, want only success=false and message", raw)
	}
	var env handler.Response
	if err := json.Unmarshal(raw, &env); err != nil || env.Message != wantMsg {
		t.Errorf("rejection message = %q, want %q", env.Message, wantMsg)
	}
}

func submission(i int) string {
	return fmt.Sprintf(`{"firstName":"Visitor","lastName":"%d","email":"v%d@example.com","serviceType":"regripping","message":"Please regrip my irons"}`, i, i)
}

func TestContactFlow(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	var created []schema.ContactMessage
	for i := range 3 {
		status, body := env.api(t, http.MethodPost, "/api/contact", submission(i))
		if status != http.StatusCreated {
			t.Fatalf("POST #%d status = %d, body %+v", i, status, body)
		}
		var m schema.ContactMessage
		if err := json.Unmarshal(body.Data, &m); err != nil {
			t.Fatalf("decode created: %v", err)
		}
		created = append(created, m)
	}

	for i := 1; i < len(created); i++ {
		if created[i].ID == created[i-1].ID {
			t.Errorf("duplicate id %d", created[i].ID)
		}
		if created[i].CreatedAt.Before(created[i-1].CreatedAt) {
			t.Errorf("createdAt went backwards: %v then %v", created[i-1].CreatedAt, created[i].CreatedAt)
		}
	}

	status, body := env.api(t, http.MethodGet, "/api/contact", "")
	if status != http.StatusOK {
		t.Fatalf("GET list status = %d", status)
	}
	var list []schema.ContactMessage
	if err := json.Unmarshal(body.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list has %d messages, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("list not newest first at %d", i)
		}
	}
	if list[0].ID != created[2].ID {
		t.Errorf("first listed id = %d, want %d", list[0].ID, created[2].ID)
	}

	last := created[2]
	status, body = env.api(t, http.MethodGet, fmt.Sprintf("/api/contact/%d", last.ID), "")
	if status != http.StatusOK {
		t.Fatalf("GET by id status = %d", status)
	}
	var got schema.ContactMessage
	if err := json.Unmarshal(body.Data, &got); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.Email != "v2@example.com" || got.ServiceType == nil || *got.ServiceType != "regripping" {
		t.Errorf("message = %+v", got)
	}
	if !got.CreatedAt.Equal(last.CreatedAt) {
		t.Errorf("createdAt read back %v, created %v", got.CreatedAt, last.CreatedAt)
	}

	if status, _ := env.api(t, http.MethodGet, "/api/contact/abc", ""); status != http.StatusBadRequest {
		t.Errorf("GET /api/contact/abc status = %d, want 400", status)
	}
	if status, _ := env.api(t, http.MethodGet, "/api/contact/9999", ""); status != http.StatusNotFound {
		t.Errorf("GET /api/contact/9999 status = %d, want 404", status)
	}
	if status, body := env.api(t, http.MethodDelete, "/api/contact/1", ""); status != http.StatusNotFound || body.Message != handler.MsgNotFound {
		t.Errorf("DELETE status = %d message = %q, want 404", status, body.Message)
	}
}

func TestAdminAuth(t *testing.T) {
	cfg := &config.Config{Admin: config.AdminConfig{BasicAuth: config.BasicAuthConfig{Enabled: true}}}
	env := newTestEnv(t, cfg)

	if _, err := env.users.Create(context.Background(), schema.InsertUser{Username: "owner", Password: "correct horse"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Submissions stay public.
	if status, _ := env.api(t, http.MethodPost, "/api/contact", submission(1)); status != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201", status)
	}

	tests := []struct {
		name       string
		user, pass string
		wantStatus int
	}{
		{name: "no credentials", wantStatus: http.StatusUnauthorized},
		{name: "wrong password", user: "owner", pass: "battery staple", wantStatus: http.StatusUnauthorized},
		{name: "unknown user", user: "nobody", pass: "correct horse", wantStatus: http.StatusUnauthorized},
		{name: "valid", user: "owner", pass: "correct horse", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
			if tt.user != "" {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			resp, raw := env.do(t, req)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusUnauthorized {
				return
			}
			if resp.Header.Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
			assertRejection(t, raw, middleware.UnauthorizedMessage)
		})
	}
}

func TestSubmissionRateLimit(t *testing.T) {
	cfg := &config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerWindow: 2, WindowSeconds: 60}}
	env := newTestEnv(t, cfg)

	for i := range 2 {
		if status, _ := env.api(t, http.MethodPost, "/api/contact", submission(i)); status != http.StatusCreated {
			t.Fatalf("POST #%d status = %d, want 201", i, status)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(submission(3)))
	req.Header.Set("Content-Type", "application/json")
	resp, raw := env.do(t, req)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("POST over limit = %d %s, want 429", resp.StatusCode, raw)
	}
	assertRejection(t, raw, middleware.RateLimitedMessage)

	// Reads are not limited.
	if status, _ := env.api(t, http.MethodGet, "/api/contact", ""); status != http.StatusOK {
		t.Errorf("GET status = %d, want 200", status)
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"index.html": "<html>shop</html>",
		"app.js":     "console.log('boppa')",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	env := newTestEnv(t, &config.Config{Server: config.ServerConfig{StaticDir: dir}})

	tests := []struct {
		target string
		want   string
	}{
		{target: "/app.js", want: "console.log('boppa')"},
		{target: "/", want: "<html>shop</html>"},
		{target: "/services", want: "<html>shop</html>"},
		{target: "/trade-in", want: "<html>shop</html>"},
	}
	for _, tt := range tests {
		resp, body := env.do(t, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if resp.StatusCode != http.StatusOK || string(body) != tt.want {
			t.Errorf("GET %s = %d %q, want 200 %q", tt.target, resp.StatusCode, body, tt.want)
		}
	}

	status, body := env.api(t, http.MethodGet, "/api/missing", "")
	if status != http.StatusNotFound || body.Message != handler.MsgNotFound {
		t.Errorf("GET /api/missing = %d %q, want JSON 404", status, body.Message)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, &config.Config{})

	for _, path := range []string{"/livez", "/readyz", "/startupz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := env.app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
