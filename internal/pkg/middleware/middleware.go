package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Typed context keys
type contextKey string

const UserIDKey contextKey = "user_id"
const UserNameKey contextKey = "user_name"
const UserEmailKey contextKey = "user_email"

// Claims is the JWT payload issued by the auth frontend.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// CORSMiddleware handles CORS headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		c.Next()
	}
}

// AuthMiddleware validates the JWT from the Authorization header or the
// auth_token cookie and rejects unauthenticated requests.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		setUserContext(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware sets user context if a valid token exists, but
// lets anonymous requests through. Public card views use it to attribute
// interactions when possible.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, jwtSecret)
		if err == nil {
			setUserContext(c, claims)
		}
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtSecret string) (*Claims, error) {
	token := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		if cookie, err := c.Cookie("auth_token"); err == nil {
			token = cookie
		}
	}
	if token == "" {
		return nil, fmt.Errorf("no token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func setUserContext(c *gin.Context, claims *Claims) {
	c.Set(string(UserIDKey), claims.UserID)
	c.Set(string(UserNameKey), claims.Name)
	c.Set(string(UserEmailKey), claims.Email)
}

// IssueToken signs a JWT for the given user. Kept here so tests and local
// tooling can mint tokens without a separate auth service.
func IssueToken(jwtSecret string, userID uuid.UUID, name, email string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID.String(),
		Name:   name,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// GetUserIDFromContext extracts the authenticated user's id, or uuid.Nil
// for anonymous requests.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	if raw, exists := c.Get(string(UserIDKey)); exists {
		if idStr, ok := raw.(string); ok {
			if id, err := uuid.Parse(idStr); err == nil {
				return id
			}
		}
	}
	return uuid.Nil
}

// GetUserNameFromContext extracts the authenticated user's display name.
func GetUserNameFromContext(c *gin.Context) string {
	if raw, exists := c.Get(string(UserNameKey)); exists {
		if name, ok := raw.(string); ok {
			return name
		}
	}
	return ""
}
