package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/restaurant-pos-api/apperror"
	"github.com/junaidrashid-git/restaurant-pos-api/auth"
	"github.com/junaidrashid-git/restaurant-pos-api/config"
	"github.com/junaidrashid-git/restaurant-pos-api/models"
	"github.com/junaidrashid-git/restaurant-pos-api/response"
	"github.com/junaidrashid-git/restaurant-pos-api/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(testutil.Logger()))
	r.GET("/app", func(c *gin.Context) { c.Error(apperror.NotFound("Order not found")) })
	r.GET("/boom", func(c *gin.Context) { c.Error(errors.New("db exploded")) })
	r.POST("/bind", func(c *gin.Context) {
		var req struct {
			Email string `json:"email" binding:"required,email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	cases := []struct {
		method, path, body string
		status             int
		message            string
		fields             int
	}{
		{http.MethodGet, "/app", "", http.StatusNotFound, "Order not found", 0},
		{http.MethodGet, "/boom", "", http.StatusInternalServerError, "Internal server error", 0},
		{http.MethodPost, "/bind", `{"email":"nope"}`, http.StatusBadRequest, "Validation failed", 1},
		{http.MethodPost, "/bind", `{"email":`, http.StatusBadRequest, "Invalid request body", 0},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != tc.status {
			t.Errorf("%s %s: status %d, want %d", tc.method, tc.path, w.Code, tc.status)
			continue
		}
		env := decode(t, w)
		if env.Success || env.Message != tc.message || len(env.Errors) != tc.fields {
			t.Errorf("%s %s: envelope %+v", tc.method, tc.path, env)
		}
	}
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	db := testutil.NewDB(t)
	issuer := auth.NewIssuer(config.JWT{Secret: "s3cret", TTL: time.Hour})
	waiter := testutil.CreateUser(t, db, models.RoleWaiter, "waiter@restaurant.com", "waiter123")
	manager := testutil.CreateUser(t, db, models.RoleManager, "manager@restaurant.com", "manager123")
	inactive := testutil.CreateUser(t, db, models.RoleManager, "old@restaurant.com", "manager123")
	db.Model(&inactive).Update("is_active", false)

	r := gin.New()
	r.Use(ErrorHandler(testutil.Logger()))
	r.GET("/reports", Authenticate(db, issuer), RequireRole(ManagerTier...), func(c *gin.Context) {
		user, _ := auth.CurrentUser(c)
		c.String(http.StatusOK, user.Email)
	})

	tokenFor := func(u models.User) string {
		tok, _, err := issuer.Issue(u)
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", "", http.StatusUnauthorized},
		{"inactive user", "Bearer " + tokenFor(inactive), "", http.StatusUnauthorized},
		{"wrong role", "Bearer " + tokenFor(waiter), "", http.StatusForbidden},
		{"manager", "Bearer " + tokenFor(manager), "", http.StatusOK},
		{"query token", "", "?token=" + url.QueryEscape(tokenFor(manager)), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/reports"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 2)
	now := time.Now()
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(ErrorHandler(testutil.Logger()), rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	now = now.Add(30 * time.Second)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("after refill: %d", w.Code)
	}
}

func TestValidateAPIKey(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(testutil.Logger()))
	r.GET("/metrics", ValidateAPIKey("k"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no key: %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-API-KEY", "k")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with key: %d", w.Code)
	}
}

func TestTelrWebhookAuth(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(testutil.Logger()))
	r.POST("/telr", TelrWebhookAuth("secret", testutil.Logger()), func(c *gin.Context) { c.Status(http.StatusOK) })

	form := url.Values{"tran_ref": {"T1"}, "tran_status": {"A"}, "tran_cartid": {"order-1"}}
	form.Set("tran_check", TelrSignature("secret", form.Get))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/telr", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("signed advice: %d %s", w.Code, w.Body.String())
	}

	form.Set("tran_amount", "999")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/telr", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("tampered advice: %d", w.Code)
	}
}
