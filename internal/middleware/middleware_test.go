package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/farellandr/rifas/internal/auth"
	"github.com/farellandr/rifas/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tokens *auth.TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/admin", JWTAuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(AdminUsernameKey))
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager(testutil.TestJWTSecret, time.Hour)
	token, _, err := tokens.Generate(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	r := newAuthRouter(tokens)

	tests := []struct {
		name           string
		setup          func(req *http.Request)
		expectedStatus int
	}{
		{"bearer header", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token}) }, http.StatusOK},
		{"missing", func(req *http.Request) {}, http.StatusUnauthorized},
		{"bad scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"tampered", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token+"x") }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK && w.Body.String() != "admin" {
				t.Errorf("Expected admin username in context, got %q", w.Body.String())
			}
		})
	}
}

func TestXenditCallbackMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/hook", XenditCallbackMiddleware("cb-token"), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		token          string
		expectedStatus int
	}{
		{"cb-token", http.StatusOK},
		{"wrong", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		if tt.token != "" {
			req.Header.Set(callbackTokenHeader, tt.token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, tt.expectedStatus)
	}

	unconfigured := gin.New()
	unconfigured.POST("/hook", XenditCallbackMiddleware(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	unconfigured.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", nil))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	testutil.AssertStatus(t, w, http.StatusInternalServerError)
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(nil, "test", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	r := gin.New()
	r.GET("/", RateLimitMiddleware(rdb, "test", 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	}
}
