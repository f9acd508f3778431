package account_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/account"
	"github.com/kbukum/accounts/database"
	"github.com/kbukum/accounts/database/dbtest"
	"github.com/kbukum/accounts/errors"
	"github.com/kbukum/accounts/failure"
	"github.com/kbukum/accounts/logger"
	"github.com/kbukum/accounts/server"
	"github.com/kbukum/accounts/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type captureRecorder struct {
	mu      sync.Mutex
	records []failure.Record
}

func (r *captureRecorder) Record(_ context.Context, rec failure.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *captureRecorder) last(t *testing.T) failure.Record {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		t.Fatal("no failure recorded")
	}
	return r.records[len(r.records)-1]
}

type testAPI struct {
	db       *database.DB
	engine   *gin.Engine
	recorder *captureRecorder
}

func newAPI(t *testing.T) *testAPI {
	t.Helper()
	db := dbtest.Open(t, account.Models()...)
	rec := &captureRecorder{}

	scope := func(ctx context.Context) (context.Context, server.TxScope) {
		c, s := db.NewScope(ctx)
		return c, s
	}
	d := server.NewDispatcher(failure.New(rec), scope, logger.Nop())

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Actor())
	engine.NoRoute(d.NotFound())
	account.NewHandler(account.NewRepository(db), logger.Nop()).Register(engine.Group("/api"), d)

	return &testAPI{db: db, engine: engine, recorder: rec}
}

func (a *testAPI) do(method, path, body, actor string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if actor != "" {
		req.Header.Set(middleware.HeaderUserID, actor)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// seedAdmin creates the admin role and user and returns the admin's id.
func (a *testAPI) seedAdmin(t *testing.T) string {
	t.Helper()
	cfg := account.SeedConfig{AdminUsername: "root", AdminEmail: "root@example.com"}
	if err := account.Seed(context.Background(), a.db, cfg, logger.Nop()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	admin, err := account.NewRepository(a.db).FindUserByUsername(context.Background(), "root")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	return fmt.Sprint(admin.ID)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func errorText(kind errors.Kind) string {
	return errors.ToResponse(kind).Body.Text()
}

func TestCreateUser(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"alice@example.com"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decode[account.UserView](t, w)
	if got.ID == 0 || got.Username != "alice" || got.Email != "alice@example.com" {
		t.Errorf("unexpected user %+v", got)
	}
	if got.Roles == nil || len(got.Roles) != 0 {
		t.Errorf("roles = %#v, want empty list", got.Roles)
	}
	if !strings.Contains(w.Body.String(), `"roles":[]`) {
		t.Errorf("roles should serialize as an empty array: %s", w.Body.String())
	}
	dbtest.AssertRowCount(t, api.db, "users", 1)
}

func TestCreateUser_DuplicateRollsBack(t *testing.T) {
	api := newAPI(t)

	body := `{"username":"alice","email":"alice@example.com"}`
	if w := api.do(http.MethodPost, "/api/users", body, ""); w.Code != http.StatusCreated {
		t.Fatalf("first create: %d %s", w.Code, w.Body.String())
	}

	w := api.do(http.MethodPost, "/api/users", body, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decode[map[string]any](t, w)
	if got["message"] != "Integrity error: Duplicate entry or constraint violation" || got["success"] != false {
		t.Errorf("unexpected body %v", got)
	}
	if _, ok := got["error"]; ok {
		t.Error("integrity body must not carry an error key")
	}

	rec := api.recorder.last(t)
	if rec.Kind != errors.KindUniqueConstraintViolation || !rec.RequiresRollback || !rec.RolledBack {
		t.Errorf("unexpected record %+v", rec)
	}
	dbtest.AssertRowCount(t, api.db, "users", 1)

	// The connection is usable again after the rollback.
	if w := api.do(http.MethodGet, "/api/users", "", ""); w.Code != http.StatusOK {
		t.Fatalf("list after rollback: %d %s", w.Code, w.Body.String())
	}
}

func TestCreateUser_InputFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind errors.Kind
	}{
		{"missing email", `{"username":"alice"}`, errors.KindMissingField},
		{"empty body", ``, errors.KindMalformedRequest},
		{"malformed json", `{"username":`, errors.KindMalformedRequest},
		{"wrong type", `{"username":42,"email":"a@example.com"}`, errors.KindTypeMismatch},
		{"bad email", `{"username":"alice","email":"not-an-email"}`, errors.KindInvalidValue},
		{"blank username", `{"username":"   ","email":"a@example.com"}`, errors.KindMissingField},
		{"trailing data", `{"username":"alice","email":"a@example.com"} garbage`, errors.KindMalformedRequest},
		{"username too long", fmt.Sprintf(`{"username":%q,"email":"a@example.com"}`, strings.Repeat("x", 81)), errors.KindInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI(t)
			w := api.do(http.MethodPost, "/api/users", tt.body, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			got := decode[map[string]string](t, w)
			if got["error"] != errorText(tt.kind) {
				t.Errorf("error = %q, want %q", got["error"], errorText(tt.kind))
			}
			if rec := api.recorder.last(t); rec.Kind != tt.kind || rec.RequiresRollback {
				t.Errorf("unexpected record %+v", rec)
			}
			dbtest.AssertRowCount(t, api.db, "users", 0)
		})
	}
}

func TestCreateUser_UnknownRoleDiscardsUser(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com","roles":["ghost"]}`, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if rec := api.recorder.last(t); rec.RequiresRollback {
		t.Errorf("not found must not require rollback: %+v", rec)
	}
	dbtest.AssertRowCount(t, api.db, "users", 0)
}

func TestCreateUser_WithRoles(t *testing.T) {
	api := newAPI(t)
	api.seedAdmin(t)

	w := api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com","roles":["admin"]}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decode[account.UserView](t, w)
	if len(got.Roles) != 1 || got.Roles[0].Name != account.AdminRole {
		t.Errorf("roles = %+v", got.Roles)
	}
}

func TestGetUser(t *testing.T) {
	api := newAPI(t)
	api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com"}`, "")

	tests := []struct {
		path   string
		status int
		error  string
	}{
		{"/api/users/1", http.StatusOK, ""},
		{"/api/users/999", http.StatusNotFound, errorText(errors.KindResourceNotFound)},
		{"/api/users/abc", http.StatusBadRequest, errorText(errors.KindInvalidValue)},
		{"/api/users/0", http.StatusBadRequest, errorText(errors.KindInvalidValue)},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := api.do(http.MethodGet, tt.path, "", "")
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
			if tt.error != "" {
				if got := decode[map[string]string](t, w)["error"]; got != tt.error {
					t.Errorf("error = %q, want %q", got, tt.error)
				}
			}
		})
	}
}

func TestUpdateUser(t *testing.T) {
	api := newAPI(t)
	api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com"}`, "")

	w := api.do(http.MethodPut, "/api/users/1", `{"email":"alice@example.org"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := decode[account.UserView](t, w); got.Email != "alice@example.org" || got.Username != "alice" {
		t.Errorf("unexpected user %+v", got)
	}

	w = api.do(http.MethodPut, "/api/users/1", `{}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty update: status = %d", w.Code)
	}
	if got := decode[map[string]string](t, w)["error"]; got != errorText(errors.KindMalformedRequest) {
		t.Errorf("error = %q", got)
	}
}

func TestUpdateUser_BlankUsername(t *testing.T) {
	api := newAPI(t)
	api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com"}`, "")

	for _, body := range []string{`{"username":"   "}`, `{"username":""}`} {
		w := api.do(http.MethodPut, "/api/users/1", body, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, body %s", body, w.Code, w.Body.String())
		}
		if got := decode[map[string]string](t, w)["error"]; got != errorText(errors.KindMissingField) {
			t.Errorf("%s: error = %q", body, got)
		}
		if rec := api.recorder.last(t); rec.Kind != errors.KindMissingField {
			t.Errorf("%s: kind = %v", body, rec.Kind)
		}
	}

	user, err := account.NewRepository(api.db).GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want unchanged", user.Username)
	}
}

func TestCreateUser_TrimsInput(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/api/users", `{"username":"  alice ","email":" a@example.com"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := decode[account.UserView](t, w); got.Username != "alice" || got.Email != "a@example.com" {
		t.Errorf("unexpected user %+v", got)
	}
}

func TestUpdateUser_DuplicateUsername(t *testing.T) {
	api := newAPI(t)
	api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com"}`, "")
	api.do(http.MethodPost, "/api/users", `{"username":"bob","email":"b@example.com"}`, "")

	w := api.do(http.MethodPut, "/api/users/2", `{"username":"alice"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if rec := api.recorder.last(t); rec.Kind != errors.KindUniqueConstraintViolation {
		t.Errorf("kind = %v", rec.Kind)
	}

	user, err := account.NewRepository(api.db).GetUser(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user.Username != "bob" {
		t.Errorf("username = %q, want unchanged", user.Username)
	}
}

func TestDeleteUser(t *testing.T) {
	api := newAPI(t)
	api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com"}`, "")

	if w := api.do(http.MethodDelete, "/api/users/1", "", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if w := api.do(http.MethodDelete, "/api/users/1", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d", w.Code)
	}
	dbtest.AssertRowCount(t, api.db, "users", 0)
}

func TestListUsers(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/api/users", "", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty list: %d %s", w.Code, w.Body.String())
	}

	api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com"}`, "")
	api.do(http.MethodPost, "/api/users", `{"username":"bob","email":"b@example.com"}`, "")

	got := decode[[]account.UserView](t, api.do(http.MethodGet, "/api/users", "", ""))
	if len(got) != 2 || got[0].Username != "alice" || got[1].Username != "bob" {
		t.Errorf("unexpected list %+v", got)
	}
}

func TestCreateRole_Authorization(t *testing.T) {
	api := newAPI(t)
	adminID := api.seedAdmin(t)
	api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com"}`, "")

	tests := []struct {
		name   string
		actor  string
		status int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"invalid actor", "nobody", http.StatusUnauthorized},
		{"not an admin", "2", http.StatusForbidden},
		{"admin", adminID, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/roles", `{"name":"editor","description":"Edits"}`, tt.actor)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
		})
	}
	dbtest.AssertRowCount(t, api.db, "roles", 2)

	w := api.do(http.MethodPost, "/api/roles", `{"name":"editor"}`, adminID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate role: status = %d", w.Code)
	}
	dbtest.AssertRowCount(t, api.db, "roles", 2)

	w = api.do(http.MethodPost, "/api/roles", `{"name":"  "}`, adminID)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank role: status = %d", w.Code)
	}
	if rec := api.recorder.last(t); rec.Kind != errors.KindMissingField {
		t.Errorf("blank role: kind = %v", rec.Kind)
	}
	dbtest.AssertRowCount(t, api.db, "roles", 2)
}

func TestRoleAssignment(t *testing.T) {
	api := newAPI(t)
	adminID := api.seedAdmin(t)
	api.do(http.MethodPost, "/api/users", `{"username":"alice","email":"a@example.com"}`, "")
	created := decode[account.RoleView](t, api.do(http.MethodPost, "/api/roles", `{"name":"editor"}`, adminID))

	path := fmt.Sprintf("/api/users/2/roles/%d", created.ID)

	if w := api.do(http.MethodPut, path, "", "2"); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin assign: status = %d", w.Code)
	}

	w := api.do(http.MethodPut, path, "", adminID)
	if w.Code != http.StatusOK {
		t.Fatalf("assign: status = %d, body %s", w.Code, w.Body.String())
	}
	if got := decode[account.UserView](t, w); len(got.Roles) != 1 || got.Roles[0].Name != "editor" {
		t.Errorf("roles after assign = %+v", got.Roles)
	}

	w = api.do(http.MethodDelete, path, "", adminID)
	if w.Code != http.StatusOK {
		t.Fatalf("remove: status = %d, body %s", w.Code, w.Body.String())
	}
	if got := decode[account.UserView](t, w); len(got.Roles) != 0 {
		t.Errorf("roles after remove = %+v", got.Roles)
	}

	if w := api.do(http.MethodPut, "/api/users/2/roles/999", "", adminID); w.Code != http.StatusNotFound {
		t.Errorf("unknown role: status = %d", w.Code)
	}
}

func TestRoles_GetListDelete(t *testing.T) {
	api := newAPI(t)
	adminID := api.seedAdmin(t)

	got := decode[[]account.RoleView](t, api.do(http.MethodGet, "/api/roles", "", ""))
	if len(got) != 1 || got[0].Name != account.AdminRole {
		t.Fatalf("roles = %+v", got)
	}

	created := decode[account.RoleView](t, api.do(http.MethodPost, "/api/roles", `{"name":"editor"}`, adminID))
	path := fmt.Sprintf("/api/roles/%d", created.ID)

	if w := api.do(http.MethodGet, path, "", ""); w.Code != http.StatusOK {
		t.Fatalf("get: status = %d", w.Code)
	}
	if w := api.do(http.MethodDelete, path, "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous delete: status = %d", w.Code)
	}
	if w := api.do(http.MethodDelete, path, "", adminID); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d, body %s", w.Code, w.Body.String())
	}
	if w := api.do(http.MethodGet, path, "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d", w.Code)
	}
}

func TestAuthPages(t *testing.T) {
	api := newAPI(t)

	tests := map[string]string{
		"/api/auth/login":  "This is the login page",
		"/api/auth/logout": "This is the logout page",
	}
	for path, want := range tests {
		w := api.do(http.MethodGet, path, "", "")
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Errorf("%s: %d %q", path, w.Code, w.Body.String())
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, "/api/nowhere", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[map[string]string](t, w)["error"]; got != errorText(errors.KindResourceNotFound) {
		t.Errorf("error = %q", got)
	}
}
