package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "s3cret"

func sign(t *testing.T, claims Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func whoami(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	r.GET("/", handlers...)
	return r
}

func get(r http.Handler, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validClaims(sub string) Claims {
	return Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    "journai",
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
}

func TestJWTAuth(t *testing.T) {
	r := whoami(JWTAuth(AuthConfig{Secret: secret, Issuer: "journai", Audience: "authenticated"}))

	w := get(r, sign(t, validClaims("alice"), jwt.SigningMethodHS256, []byte(secret)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"alice","role":"user"}`, w.Body.String())

	admin := validClaims("root")
	admin.AppMetadata = map[string]any{"role": "admin"}
	w = get(r, sign(t, admin, jwt.SigningMethodHS256, []byte(secret)))
	assert.JSONEq(t, `{"user_id":"root","role":"admin"}`, w.Body.String())

	expired := validClaims("alice")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims("alice")
	wrongIssuer.Issuer = "someone-else"

	wrongAudience := validClaims("alice")
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noSubject := validClaims("")

	for name, tok := range map[string]string{
		"missing":        "",
		"garbage":        "abc.def.ghi",
		"wrong secret":   sign(t, validClaims("alice"), jwt.SigningMethodHS256, []byte("other")),
		"wrong alg":      sign(t, validClaims("alice"), jwt.SigningMethodHS512, []byte(secret)),
		"expired":        sign(t, expired, jwt.SigningMethodHS256, []byte(secret)),
		"wrong issuer":   sign(t, wrongIssuer, jwt.SigningMethodHS256, []byte(secret)),
		"wrong audience": sign(t, wrongAudience, jwt.SigningMethodHS256, []byte(secret)),
		"no subject":     sign(t, noSubject, jwt.SigningMethodHS256, []byte(secret)),
	} {
		t.Run(name, func(t *testing.T) {
			w := get(r, tok)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	setRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set("role", role) }
	}

	assert.Equal(t, http.StatusOK, get(whoami(setRole("Admin"), RequireAdmin()), "").Code)
	assert.Equal(t, http.StatusForbidden, get(whoami(setRole("user"), RequireAdmin()), "").Code)
	assert.Equal(t, http.StatusForbidden, get(whoami(RequireAdmin()), "").Code)
}

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	now := time.Date(2025, 11, 5, 14, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("a"))
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"), "burst spent")
	assert.True(t, rl.allow("b"), "other clients have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, rl.allow("a"), "one token refilled")
	assert.False(t, rl.allow("a"))
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2025, 11, 5, 14, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.allow("a")
	now = now.Add(limiterIdleTTL + time.Second)
	rl.allow("b")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "a")
	assert.Contains(t, rl.clients, "b")
}

func TestRateLimiter_KeysByUser(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	setUser := func(c *gin.Context) { c.Set("user_id", c.GetHeader("X-User")) }
	r := whoami(setUser, rl.Middleware())

	call := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("alice"))
	assert.Equal(t, http.StatusTooManyRequests, call("alice"))
	assert.Equal(t, http.StatusOK, call("bob"), "same IP, different user")
}

func TestRateLimiter_DisabledWithZeroRate(t *testing.T) {
	r := whoami(NewRateLimiter(0, 0).Middleware())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(r, "").Code)
	}
}
