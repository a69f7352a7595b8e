package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/config"
)

func setupAuthRouter(t *testing.T, rateLimiter *RateLimiter) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service, db, cleanup := setupTestService(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	sessionManager, err := NewSessionManager(sqlDB, config.Auth{
		SessionLifetime: time.Hour,
		SecureCookies:   false,
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(sessionManager.SessionLoadSave())
	router.Use(NewMiddleware(service, sessionManager).Handler())

	NewController(service, sessionManager, rateLimiter).RegisterRoutes(router)

	return router, cleanup
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req, err := http.NewRequest("POST", path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignupLoginMeLogout(t *testing.T) {
	router, cleanup := setupAuthRouter(t, nil)
	defer cleanup()

	// Signup
	w := postJSON(t, router, "/api/auth/signup", gin.H{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "password1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Login establishes a session cookie
	w = postJSON(t, router, "/api/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "password1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Me with the session
	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "admin@example.com", data["email"])
	assert.Equal(t, "admin", data["role"])

	// Logout destroys the session
	w = postJSON(t, router, "/api/auth/logout", gin.H{}, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestMeWithoutSession(t *testing.T) {
	router, cleanup := setupAuthRouter(t, nil)
	defer cleanup()

	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router, cleanup := setupAuthRouter(t, nil)
	defer cleanup()

	w := postJSON(t, router, "/api/auth/signup", gin.H{
		"name":     "Admin",
		"email":    "admin@example.com",
		"password": "password1",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/api/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown email looks identical to a wrong password
	w = postJSON(t, router, "/api/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "whatever",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	router, cleanup := setupAuthRouter(t, nil)
	defer cleanup()

	body := gin.H{"name": "Admin", "email": "admin@example.com", "password": "password1"}

	w := postJSON(t, router, "/api/auth/signup", body, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, router, "/api/auth/signup", body, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRateLimited(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
	})
	defer limiter.Stop()

	router, cleanup := setupAuthRouter(t, limiter)
	defer cleanup()

	// Probing an unknown email still burns attempts; the limiter does not
	// need an account to exist.
	body := gin.H{"email": "nobody@example.com", "password": "wrong"}

	w := postJSON(t, router, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, router, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(t, router, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// A different email from the same IP is unaffected
	w = postJSON(t, router, "/api/auth/login", gin.H{
		"email":    "someone.else@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
