package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/staynest/staynest/internal/auth"
	"github.com/staynest/staynest/internal/cache"
	"github.com/staynest/staynest/internal/config"
	apphttp "github.com/staynest/staynest/internal/http"
	"github.com/staynest/staynest/internal/repo/memory"
)

// setupRouter builds the real router on memory-backed repos and a real
// token manager, so the whole cookie/authz path runs without Postgres.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Env:            "test",
		JWTSecret:      "integration-test-secret",
		SessionTTL:     time.Hour,
		CORSOrigins:    []string{"http://localhost:5173"},
		UploadDir:      t.TempDir(),
		PlacesCacheTTL: time.Minute,
		AuthRateLimit:  100,
		AuthRateWindow: time.Minute,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	places := memory.NewPlacesRepo()

	return apphttp.NewRouter(apphttp.Deps{
		Cfg:      cfg,
		Log:      logger,
		Users:    memory.NewUsersRepo(),
		Places:   places,
		Bookings: memory.NewBookingsRepo(places),
		Cache:    cache.NewMemory(cfg.PlacesCacheTTL),
		JWT:      auth.NewManager(cfg.JWTSecret, cfg.SessionTTL),
	})
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader

	if body != "" {
		rd = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, rd)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}

	t.Fatalf("no session cookie in response, headers=%v", w.Header())

	return nil
}

func register(t *testing.T, r *gin.Engine, name, email string) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/register",
		`{"name": "`+name+`", "email": "`+email+`", "password": "hunter22"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d, body=%s", email, w.Code, w.Body.String())
	}
}

func login(t *testing.T, r *gin.Engine, email string) *http.Cookie {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/login",
		`{"email": "`+email+`", "password": "hunter22"}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body=%s", email, w.Code, w.Body.String())
	}

	return sessionCookie(t, w)
}

const placeBody = `{
	"title": "Canal loft",
	"address": "12 Prinsengracht, Amsterdam",
	"addedPhotos": ["a.jpg"],
	"perks": ["wifi"],
	"maxGuests": 4,
	"price": 120
}`

func TestSessionAndOwnershipFlow(t *testing.T) {
	r := setupRouter(t)

	register(t, r, "Ana", "ana@example.com")
	register(t, r, "Ben", "ben@example.com")

	anaCookie := login(t, r, "ana@example.com")
	benCookie := login(t, r, "ben@example.com")

	// public listing needs no cookie
	if w := doJSON(t, r, http.MethodGet, "/places", "", nil); w.Code != http.StatusOK {
		t.Fatalf("anonymous GET /places: status %d", w.Code)
	}

	// anonymous creation is rejected with the collapsed 401
	w := doJSON(t, r, http.MethodPost, "/places", placeBody, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous POST /places: status %d, want 401", w.Code)
	}

	if !strings.Contains(w.Body.String(), `"code":"unauthorized"`) {
		t.Fatalf("anonymous POST /places body = %s", w.Body.String())
	}

	// Ana creates a place; ownership comes from her session
	w = doJSON(t, r, http.MethodPost, "/places", placeBody, anaCookie)

	if w.Code != http.StatusCreated {
		t.Fatalf("POST /places: status %d, body=%s", w.Code, w.Body.String())
	}

	var created struct {
		ID    string `json:"id"`
		Owner string `json:"owner"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}

	if created.ID == "" || created.Owner == "" {
		t.Fatalf("create response missing id/owner: %s", w.Body.String())
	}

	updateBody := `{
		"id": "` + created.ID + `",
		"title": "Canal loft deluxe",
		"address": "12 Prinsengracht, Amsterdam",
		"maxGuests": 4,
		"price": 150
	}`

	// Ben cannot edit Ana's place
	if w := doJSON(t, r, http.MethodPut, "/places", updateBody, benCookie); w.Code != http.StatusForbidden {
		t.Fatalf("stranger PUT /places: status %d, want 403, body=%s", w.Code, w.Body.String())
	}

	// Ana can
	if w := doJSON(t, r, http.MethodPut, "/places", updateBody, anaCookie); w.Code != http.StatusOK {
		t.Fatalf("owner PUT /places: status %d, body=%s", w.Code, w.Body.String())
	}

	// an unknown id reads 404, even for an authenticated caller
	ghost := strings.Replace(updateBody, created.ID, "no-such-place", 1)

	if w := doJSON(t, r, http.MethodPut, "/places", ghost, anaCookie); w.Code != http.StatusNotFound {
		t.Fatalf("PUT unknown place: status %d, want 404, body=%s", w.Code, w.Body.String())
	}

	// Ben books Ana's place; the payload lies about the user and loses
	bookingBody := `{
		"place": "` + created.ID + `",
		"user": "someone-else",
		"checkIn": "2026-09-01",
		"checkOut": "2026-09-05",
		"numberOfGuests": 2,
		"name": "Ben",
		"phone": "+31600000000",
		"price": 600
	}`

	w = doJSON(t, r, http.MethodPost, "/booking", bookingBody, benCookie)

	if w.Code != http.StatusOK {
		t.Fatalf("POST /bookings: status %d, body=%s", w.Code, w.Body.String())
	}

	// Ben sees his booking with the place expanded
	w = doJSON(t, r, http.MethodGet, "/bookings", "", benCookie)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /bookings: status %d, body=%s", w.Code, w.Body.String())
	}

	var benBookings []struct {
		ID    string `json:"id"`
		User  string `json:"user"`
		Place struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"place"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &benBookings); err != nil {
		t.Fatalf("invalid bookings response: %v", err)
	}

	if len(benBookings) != 1 {
		t.Fatalf("ben has %d bookings, want 1: %s", len(benBookings), w.Body.String())
	}

	if benBookings[0].User == "someone-else" {
		t.Fatal("booking user came from the payload instead of the session")
	}

	if benBookings[0].Place.ID != created.ID || benBookings[0].Place.Title != "Canal loft deluxe" {
		t.Fatalf("booking place not expanded: %s", w.Body.String())
	}

	// Ana's list stays scoped to her own (zero) bookings
	w = doJSON(t, r, http.MethodGet, "/bookings", "", anaCookie)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /bookings (ana): status %d", w.Code)
	}

	var anaBookings []json.RawMessage

	if err := json.Unmarshal(w.Body.Bytes(), &anaBookings); err != nil {
		t.Fatalf("invalid bookings response: %v", err)
	}

	if len(anaBookings) != 0 {
		t.Fatalf("ana sees %d bookings, want 0", len(anaBookings))
	}
}

func TestProfileAsymmetry(t *testing.T) {
	r := setupRouter(t)

	register(t, r, "Ana", "ana@example.com")
	cookie := login(t, r, "ana@example.com")

	// no cookie: 200 with a null body
	w := doJSON(t, r, http.MethodGet, "/profile", "", nil)

	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "null" {
		t.Fatalf("anonymous profile: status %d, body=%q", w.Code, w.Body.String())
	}

	// garbage cookie: 401
	w = doJSON(t, r, http.MethodGet, "/profile", "", &http.Cookie{Name: "token", Value: "not-a-token"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage cookie profile: status %d, want 401", w.Code)
	}

	// real cookie: the caller's profile
	w = doJSON(t, r, http.MethodGet, "/profile", "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("profile: status %d, body=%s", w.Code, w.Body.String())
	}

	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("invalid profile response: %v", err)
	}

	if profile.Email != "ana@example.com" || profile.Name != "Ana" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	// logout clears the session cookie
	w = doJSON(t, r, http.MethodPost, "/logout", "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}

	cleared := false

	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}

	if !cleared {
		t.Fatal("logout did not expire the session cookie")
	}
}

func TestLoginFailureModes(t *testing.T) {
	r := setupRouter(t)

	register(t, r, "Ana", "ana@example.com")

	w := doJSON(t, r, http.MethodPost, "/login",
		`{"email": "ghost@example.com", "password": "hunter22"}`, nil)

	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "user_not_found") {
		t.Fatalf("unknown email: status %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/login",
		`{"email": "ana@example.com", "password": "wrong"}`, nil)

	if w.Code != http.StatusUnprocessableEntity || !strings.Contains(w.Body.String(), "incorrect_password") {
		t.Fatalf("wrong password: status %d, body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/register",
		`{"name": "Ana Again", "email": "ana@example.com", "password": "hunter22"}`, nil)

	if w.Code != http.StatusUnprocessableEntity || !strings.Contains(w.Body.String(), "email_taken") {
		t.Fatalf("duplicate register: status %d, body=%s", w.Code, w.Body.String())
	}
}
