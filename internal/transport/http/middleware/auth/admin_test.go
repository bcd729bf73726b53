package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mandalnilabja/scenesculpt/internal/storage"
)

type fakePasswordStore struct {
	hash string
	err  error
}

func (f *fakePasswordStore) GetAdminPasswordHash() (string, error) { return f.hash, f.err }

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	hash, err := storage.HashPassword(pw, &storage.PasswordParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatal(err)
	}
	return hash
}

func TestAdminAuth(t *testing.T) {
	hash := mustHash(t, "adminpass123")

	tests := []struct {
		name       string
		store      *fakePasswordStore
		authHeader string
		wantStatus int
		wantNext   bool
	}{
		{"correct password passes", &fakePasswordStore{hash: hash}, "Bearer adminpass123", http.StatusOK, true},
		{"wrong password rejected", &fakePasswordStore{hash: hash}, "Bearer nope", http.StatusUnauthorized, false},
		{"missing header rejected", &fakePasswordStore{hash: hash}, "", http.StatusUnauthorized, false},
		{"basic scheme rejected", &fakePasswordStore{hash: hash}, "Basic YWRtaW4=", http.StatusUnauthorized, false},
		{"not configured", &fakePasswordStore{}, "Bearer adminpass123", http.StatusUnauthorized, false},
		{"store error", &fakePasswordStore{err: errors.New("closed")}, "Bearer adminpass123", http.StatusUnauthorized, false},
		{"corrupt hash", &fakePasswordStore{hash: "garbage"}, "Bearer adminpass123", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := AdminAuth(tt.store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/image", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if called != tt.wantNext {
				t.Errorf("next called = %v, want %v", called, tt.wantNext)
			}
			if rec.Code == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), "authentication_error") {
				t.Errorf("expected JSON auth error, got %s", rec.Body.String())
			}
		})
	}
}

func TestAdminAuth_CacheFollowsPasswordChange(t *testing.T) {
	cache, err := NewVerifiedCache()
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	store := &fakePasswordStore{hash: mustHash(t, "firstpass123")}
	handler := AdminAuth(store, cache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(pw string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/image", nil)
		req.Header.Set("Authorization", "Bearer "+pw)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("firstpass123"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	cache.Wait()
	if _, ok := cache.Get(digest("firstpass123")); !ok {
		t.Error("expected verified password to be cached")
	}
	if code := do("firstpass123"); code != http.StatusOK {
		t.Errorf("cached password should pass, got %d", code)
	}

	store.hash = mustHash(t, "secondpass123")
	if code := do("firstpass123"); code != http.StatusUnauthorized {
		t.Errorf("old password must fail after a change, got %d", code)
	}
	if code := do("secondpass123"); code != http.StatusOK {
		t.Errorf("new password should pass, got %d", code)
	}
}

func TestAdminAuth_CachesVerifiedPassword(t *testing.T) {
	hash := mustHash(t, "adminpass123")
	cache, err := NewVerifiedCache()
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	handler := AdminAuth(&fakePasswordStore{hash: hash}, cache)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/image", nil)
	req.Header.Set("Authorization", "Bearer adminpass123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	got, ok := cache.Get(digest("adminpass123"))
	if !ok || got != hash {
		t.Errorf("expected verified password to be cached against its hash, got %q, %v", got, ok)
	}
}
