package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
	"github.com/mandalnilabja/scenesculpt/internal/storage/encryption"
	"github.com/mandalnilabja/scenesculpt/internal/storage/sqlite"
)

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate() { c.n++ }

func setup(t *testing.T) (http.Handler, *sqlite.Storage, *countingInvalidator) {
	t.Helper()
	enc, err := encryption.NewWithKey(make([]byte, 32))
	if err != nil {
		t.Fatal(err)
	}
	store, err := sqlite.NewWithEncryptor(filepath.Join(t.TempDir(), "admin.db"), enc)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	inv := &countingInvalidator{}
	h := New(store, time.Now(), inv)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/credentials", h.CreateCredential)
	mux.HandleFunc("GET /api/admin/credentials", h.ListCredentials)
	mux.HandleFunc("GET /api/admin/credentials/{id}", h.GetCredential)
	mux.HandleFunc("PUT /api/admin/credentials/{id}", h.UpdateCredential)
	mux.HandleFunc("DELETE /api/admin/credentials/{id}", h.DeleteCredential)
	mux.HandleFunc("POST /api/admin/credentials/{id}/default", h.SetDefaultCredential)
	mux.HandleFunc("PUT /api/admin/password", h.ChangeAdminPassword)
	mux.HandleFunc("GET /api/admin/info", h.AdminInfo)
	mux.HandleFunc("GET /api/admin/health", h.AdminHealth)
	return mux, store, inv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCredentialLifecycle(t *testing.T) {
	h, store, inv := setup(t)

	rec := do(t, h, http.MethodPost, "/api/admin/credentials", `{"name":"studio","api_key":"sk-abcdefghijklmnop","is_default":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "sk-abcdefghijklmnop") {
		t.Error("response must not contain the raw key")
	}

	var created storage.CredentialPreview
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Provider != "stability" || created.APIKeyPreview != "sk-abc...mnop" || !created.IsDefault {
		t.Errorf("unexpected preview %+v", created)
	}

	if rec := do(t, h, http.MethodGet, "/api/admin/credentials/"+created.ID, ""); rec.Code != http.StatusOK {
		t.Errorf("get: expected 200, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPut, "/api/admin/credentials/"+created.ID, `{"api_key":"sk-rotated-0000000000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stored, _ := store.GetCredential(created.ID)
	if stored.APIKey != "sk-rotated-0000000000" {
		t.Errorf("expected rotated key in storage, got %q", stored.APIKey)
	}

	rec = do(t, h, http.MethodGet, "/api/admin/credentials", "")
	var list struct {
		Credentials []storage.CredentialPreview `json:"credentials"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list.Credentials) != 1 {
		t.Errorf("expected one credential, got %s", rec.Body.String())
	}

	if rec := do(t, h, http.MethodPost, "/api/admin/credentials/"+created.ID+"/default", ""); rec.Code != http.StatusOK {
		t.Errorf("set default: expected 200, got %d", rec.Code)
	}

	if rec := do(t, h, http.MethodDelete, "/api/admin/credentials/"+created.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/admin/credentials/"+created.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}

	// create, update, set default, delete
	if inv.n != 4 {
		t.Errorf("expected 4 cache invalidations, got %d", inv.n)
	}
}

func TestCreateCredential_Errors(t *testing.T) {
	h, _, _ := setup(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing key", `{"name":"a"}`, http.StatusBadRequest},
		{"blank name", `{"name":"  ","api_key":"sk-1"}`, http.StatusBadRequest},
		{"unknown provider", `{"provider":"openai","name":"a","api_key":"sk-1"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/api/admin/credentials", tt.body); rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	body := `{"name":"dup","api_key":"sk-1234567890"}`
	if rec := do(t, h, http.MethodPost, "/api/admin/credentials", body); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/admin/credentials", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", rec.Code)
	}
}

func TestUnknownCredential(t *testing.T) {
	h, _, _ := setup(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/admin/credentials/cred_missing"},
		{http.MethodDelete, "/api/admin/credentials/cred_missing"},
		{http.MethodPost, "/api/admin/credentials/cred_missing/default"},
	} {
		if rec := do(t, h, tc.method, tc.path, `{}`); rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestChangeAdminPassword(t *testing.T) {
	h, store, _ := setup(t)

	if rec := do(t, h, http.MethodPut, "/api/admin/password", `{"new_password":"weak"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("weak password: expected 400, got %d", rec.Code)
	}

	rec := do(t, h, http.MethodPut, "/api/admin/password", `{"new_password":"studio2024pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	hash, _ := store.GetAdminPasswordHash()
	if ok, err := storage.VerifyPassword("studio2024pass", hash); err != nil || !ok {
		t.Errorf("stored hash should verify the new password: %v", err)
	}

	if rec := do(t, h, http.MethodPut, "/api/admin/password", `{"new_password":"studio2024pass"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("reused password: expected 400, got %d", rec.Code)
	}
}

func TestAdminInfoAndHealth(t *testing.T) {
	h, _, _ := setup(t)

	rec := do(t, h, http.MethodGet, "/api/admin/info", "")
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"total_credentials":0`)) {
		t.Errorf("unexpected info response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/admin/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"stored_api_key":"missing"`) {
		t.Errorf("expected missing key before any credential, got %s", rec.Body.String())
	}
}

func TestAdminInfoGenerationStats(t *testing.T) {
	h, store, _ := setup(t)

	entries := []*storage.GenerationLog{
		{RequestID: "r1", Mode: "regenerate", Status: "succeeded"},
		{RequestID: "r2", Mode: "iterate", Status: "failed", ErrorKind: "api"},
		{RequestID: "r3", Mode: "regenerate", Status: "failed", ErrorKind: "api"},
		{RequestID: "r4", Mode: "regenerate", Status: "failed", ErrorKind: "network"},
	}
	for _, e := range entries {
		if err := store.LogGeneration(e); err != nil {
			t.Fatal(err)
		}
	}

	rec := do(t, h, http.MethodGet, "/api/admin/info", "")
	var info struct {
		Stats struct {
			Generations struct {
				Succeeded   int            `json:"succeeded"`
				Failed      int            `json:"failed"`
				ByErrorKind map[string]int `json:"by_error_kind"`
			} `json:"generations"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	g := info.Stats.Generations
	if g.Succeeded != 1 || g.Failed != 3 {
		t.Errorf("expected 1 succeeded and 3 failed, got %+v", g)
	}
	if g.ByErrorKind["api"] != 2 || g.ByErrorKind["network"] != 1 {
		t.Errorf("unexpected error kinds %v", g.ByErrorKind)
	}
}
