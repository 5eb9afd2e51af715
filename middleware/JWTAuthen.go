package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse/config"
	"civicpulse/model"
	"civicpulse/policy"
)

// Context keys set by AccessTokenMiddleware.
const (
	CtxUserID = "userId"
	CtxRole   = "role"
)

// AccessTokenMiddleware validates the bearer token (or the "token" cookie
// for browser sessions) and stores the actor identity in the gin context.
func AccessTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Authorization token is missing"))
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &model.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Token is expired or invalid"))
			return
		}

		claims, ok := token.Claims.(*model.AccessClaims)
		if !ok || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Invalid token claims"))
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Invalid userId in token claims"))
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// RefreshTokenMiddleware validates a refresh token and stores the user id.
// Role is not trusted from the refresh token; the handler reloads the user.
func RefreshTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Refresh token is missing"))
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &model.RefreshClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.JWTRefreshSecret), nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Refresh token is expired or invalid"))
			return
		}

		claims, ok := token.Claims.(*model.RefreshClaims)
		if !ok || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Invalid token claims"))
			return
		}
		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.Fail("Invalid userId in token claims"))
			return
		}

		c.Set(CtxUserID, userID)
		c.Next()
	}
}

// RoleMiddleware rejects requests whose authenticated role is not listed.
func RoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, model.Fail("Forbidden"))
	}
}

// AdminMiddleware is RoleMiddleware("admin") under its historical name.
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}

// Actor rebuilds the policy actor from the request context.
func Actor(c *gin.Context) policy.Actor {
	id, _ := c.Get(CtxUserID)
	oid, _ := id.(primitive.ObjectID)
	return policy.Actor{ID: oid.Hex(), Role: c.GetString(CtxRole)}
}

// UserID returns the authenticated user id.
func UserID(c *gin.Context) primitive.ObjectID {
	id, _ := c.Get(CtxUserID)
	oid, _ := id.(primitive.ObjectID)
	return oid
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}
