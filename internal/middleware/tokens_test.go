package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/platefull/platefull-api/internal/config"
)

const testSecret = "test-secret-key-for-jwt-signing"

func init() {
	gin.SetMode(gin.TestMode)
}

func makeTestToken(userID uint, tokenType string, expiry time.Time, secret string) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     expiry.Unix(),
		"iat":     time.Now().Unix(),
		"type":    tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, _ := token.SignedString([]byte(secret))
	return s
}

func tokenTestConfig() *config.Config {
	return &config.Config{
		EnvVars: config.EnvVars{
			JwtSecretKey: testSecret,
		},
	}
}

func setupTokenRouter() *gin.Engine {
	r := gin.New()
	r.Use(VerifyTokenMiddleware(tokenTestConfig()))
	r.GET("/test", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func TestVerifyToken_ValidAccessToken(t *testing.T) {
	r := setupTokenRouter()

	token := makeTestToken(42, "access", time.Now().Add(15*time.Minute), testSecret)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d. body: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestVerifyToken_MissingAuthorizationHeader(t *testing.T) {
	r := setupTokenRouter()

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifyToken_ExpiredToken(t *testing.T) {
	r := setupTokenRouter()

	token := makeTestToken(42, "access", time.Now().Add(-1*time.Hour), testSecret)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	r := setupTokenRouter()

	token := makeTestToken(42, "access", time.Now().Add(15*time.Minute), "wrong-secret")

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestVerifyToken_RefreshTokenRejected(t *testing.T) {
	r := setupTokenRouter()

	token := makeTestToken(42, "refresh", time.Now().Add(30*24*time.Hour), testSecret)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d (refresh token should be rejected for access routes)", w.Code, http.StatusUnauthorized)
	}
}

func setupOptionalTokenRouter() *gin.Engine {
	r := gin.New()
	r.Use(OptionalVerifyTokenMiddleware(tokenTestConfig()))
	r.GET("/test", func(c *gin.Context) {
		if userID, ok := c.Get("user_id"); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": userID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"anonymous": true})
	})
	return r
}

func TestOptionalVerifyToken_NoHeaderPassesThrough(t *testing.T) {
	r := setupOptionalTokenRouter()

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != `{"anonymous":true}` {
		t.Errorf("body = %s, want anonymous marker", w.Body.String())
	}
}

func TestOptionalVerifyToken_ValidTokenSetsUserID(t *testing.T) {
	r := setupOptionalTokenRouter()

	token := makeTestToken(7, "access", time.Now().Add(15*time.Minute), testSecret)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != `{"user_id":7}` {
		t.Errorf("body = %s, want user_id 7", w.Body.String())
	}
}

func TestOptionalVerifyToken_BadTokenStillPassesThrough(t *testing.T) {
	r := setupOptionalTokenRouter()

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid.token.here")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != `{"anonymous":true}` {
		t.Errorf("body = %s, want anonymous marker", w.Body.String())
	}
}
