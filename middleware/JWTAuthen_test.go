package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse/config"
	"civicpulse/model"
)

var testCfg = &config.Config{
	JWTSecret:        "test-secret",
	JWTRefreshSecret: "test-refresh-secret",
}

func signToken(t *testing.T, userID, role, secret string, ttl time.Duration) string {
	t.Helper()
	claims := &model.AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func signRefreshToken(t *testing.T, userID, secret string, ttl time.Duration) string {
	t.Helper()
	claims := &model.RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing refresh token: %v", err)
	}
	return signed
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AccessTokenMiddleware(testCfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c).Hex(), "role": c.GetString(CtxRole)})
	})
	router.GET("/protected", handlers...)
	return router
}

func refreshRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/refresh", RefreshTokenMiddleware(testCfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserID(c).Hex()})
	})
	return router
}

func TestAccessTokenMiddlewareAcceptsBearer(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	token := signToken(t, userID, model.RoleCitizen, testCfg.JWTSecret, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protectedRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAccessTokenMiddlewareAcceptsCookie(t *testing.T) {
	token := signToken(t, primitive.NewObjectID().Hex(), model.RoleCitizen, testCfg.JWTSecret, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rr := httptest.NewRecorder()
	protectedRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestAccessTokenMiddlewareRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rr := httptest.NewRecorder()
	protectedRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAccessTokenMiddlewareRejectsBadSignature(t *testing.T) {
	token := signToken(t, primitive.NewObjectID().Hex(), model.RoleCitizen, "wrong-secret", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protectedRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAccessTokenMiddlewareRejectsExpired(t *testing.T) {
	token := signToken(t, primitive.NewObjectID().Hex(), model.RoleCitizen, testCfg.JWTSecret, -time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	protectedRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRefreshTokenMiddleware(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	token := signRefreshToken(t, userID, testCfg.JWTRefreshSecret, time.Hour)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	refreshRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// An access token must not pass the refresh gate; the secrets differ.
	accessToken := signToken(t, userID, model.RoleCitizen, testCfg.JWTSecret, time.Hour)
	req = httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr = httptest.NewRecorder()
	refreshRouter().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("access token on refresh route: expected 401, got %d", rr.Code)
	}
}

func TestRoleMiddleware(t *testing.T) {
	token := signToken(t, primitive.NewObjectID().Hex(), model.RoleCitizen, testCfg.JWTSecret, time.Hour)

	router := protectedRouter(RoleMiddleware(model.RoleAdmin))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("citizen on admin route: expected 403, got %d", rr.Code)
	}

	adminToken := signToken(t, primitive.NewObjectID().Hex(), model.RoleAdmin, testCfg.JWTSecret, time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("admin on admin route: expected 200, got %d", rr.Code)
	}
}
