package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/staynest/staynest/internal/auth"
	"github.com/staynest/staynest/internal/config"
	"github.com/staynest/staynest/internal/domain/user"
	"github.com/staynest/staynest/internal/http/handlers"
	"github.com/staynest/staynest/internal/security"
)

type fakeUsersRepo struct {
	createFn     func(ctx context.Context, email, passwordHash, name string) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByIDFn    func(ctx context.Context, id user.ID) (user.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, email, passwordHash, name string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, passwordHash, name)
	}

	return user.User{ID: user.ID("u-new"), Email: email, PasswordHash: passwordHash, Name: name}, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id user.ID) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{}, user.ErrNotFound
}

func testConfig() config.Config {
	return config.Config{
		Env:        "test",
		SessionTTL: 72 * time.Hour,
	}
}

func newSessionManager(t *testing.T) *auth.Manager {
	t.Helper()

	return auth.NewManager("test-secret-test-secret-test-secret", time.Hour)
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
		wantErrCode    string
	}{
		{
			name:           "success",
			body:           `{"name": "Ana", "email": "ana@example.com", "password": "hunter22"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "validation_error",
			body:           `{"name": "Ana", "email": "not-an-email", "password": "hunter22"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantErrCode:    "validation",
		},
		{
			name: "email_taken",
			body: `{"name": "Ana", "email": "ana@example.com", "password": "hunter22"}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, email, passwordHash, name string) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantErrCode:    "email_taken",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewAuthHandler(repo, newSessionManager(t), testConfig())

			r := setupRouter(http.MethodPost, "/register", nil, h.Register)

			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantErrCode != "" && !strings.Contains(w.Body.String(), `"code":"`+tt.wantErrCode+`"`) {
				t.Fatalf("expected error code %q in body %s", tt.wantErrCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK && strings.Contains(w.Body.String(), "passwordHash") {
				t.Fatalf("password hash leaked: %s", w.Body.String())
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("hunter22")

	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	ana := user.User{ID: user.ID("u-ana"), Email: "ana@example.com", PasswordHash: hash, Name: "Ana"}

	seeded := func(f *fakeUsersRepo) {
		f.getByEmailFn = func(ctx context.Context, email string) (user.User, error) {
			if email == ana.Email {
				return ana, nil
			}

			return user.User{}, user.ErrNotFound
		}
	}

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantErrCode    string
		wantCookie     bool
	}{
		{
			name:           "success_sets_cookie",
			body:           `{"email": "ana@example.com", "password": "hunter22"}`,
			wantStatusCode: http.StatusOK,
			wantCookie:     true,
		},
		{
			// unknown email and wrong password answer differently on purpose
			name:           "unknown_email",
			body:           `{"email": "ghost@example.com", "password": "hunter22"}`,
			wantStatusCode: http.StatusNotFound,
			wantErrCode:    "user_not_found",
		},
		{
			name:           "wrong_password",
			body:           `{"email": "ana@example.com", "password": "wrong"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantErrCode:    "incorrect_password",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}
			seeded(repo)

			h := handlers.NewAuthHandler(repo, newSessionManager(t), testConfig())

			r := setupRouter(http.MethodPost, "/login", nil, h.Login)

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantErrCode != "" && !strings.Contains(w.Body.String(), `"code":"`+tt.wantErrCode+`"`) {
				t.Fatalf("expected error code %q in body %s", tt.wantErrCode, w.Body.String())
			}

			gotCookie := false

			for _, c := range w.Result().Cookies() {
				if c.Name == "token" && c.Value != "" {
					gotCookie = true

					if !c.HttpOnly {
						t.Fatal("session cookie must be HttpOnly")
					}
				}
			}

			if gotCookie != tt.wantCookie {
				t.Fatalf("cookie set = %v, want %v", gotCookie, tt.wantCookie)
			}
		})
	}
}

func TestProfileHandler(t *testing.T) {
	ana := user.User{ID: user.ID("u-ana"), Email: "ana@example.com", Name: "Ana"}

	repo := &fakeUsersRepo{
		getByIDFn: func(ctx context.Context, id user.ID) (user.User, error) {
			if id == ana.ID {
				return ana, nil
			}

			return user.User{}, user.ErrNotFound
		},
	}

	h := handlers.NewAuthHandler(repo, newSessionManager(t), testConfig())

	t.Run("anonymous_gets_null", func(t *testing.T) {
		r := setupRouter(http.MethodGet, "/profile", nil, h.Profile)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200", w.Code)
		}

		if strings.TrimSpace(w.Body.String()) != "null" {
			t.Fatalf("anonymous profile = %q, want null", w.Body.String())
		}
	})

	t.Run("authenticated_gets_profile", func(t *testing.T) {
		ident := auth.Identity{UserID: ana.ID, Email: ana.Email}

		r := setupRouter(http.MethodGet, "/profile", &ident, h.Profile)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
		}

		var got user.Profile

		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid json: %v", err)
		}

		if got.ID != ana.ID || got.Email != ana.Email || got.Name != ana.Name {
			t.Fatalf("unexpected profile %+v", got)
		}
	})
}

func TestLogoutHandlerClearsCookie(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUsersRepo{}, newSessionManager(t), testConfig())

	r := setupRouter(http.MethodPost, "/logout", nil, h.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}

	cleared := false

	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}

	if !cleared {
		t.Fatal("expected an expiring token cookie")
	}
}
