package middleware

import (
	"net/http"
	"strings"
	"time"

	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

type Claims struct {
	UserID uint            `json:"user_id"`
	Name   string          `json:"name"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for the given identity
func GenerateToken(id models.Identity, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: id.UserID,
		Name:   id.Name,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken validates a signed JWT and returns the identity it carries
func ParseToken(tokenStr string, secret []byte) (models.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Identity{}, err
	}
	if !token.Valid || claims.UserID == 0 || !claims.Role.Valid() {
		return models.Identity{}, jwt.ErrTokenInvalidClaims
	}
	return models.Identity{UserID: claims.UserID, Name: claims.Name, Role: claims.Role}, nil
}

// Authenticate resolves the Bearer token, if any, into an identity on the context.
// Requests without a valid token continue anonymously.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			id, err := ParseToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
			if err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// RequireIdentity rejects anonymous callers
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// CurrentIdentity extracts the caller identity from context
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := val.(models.Identity)
	return id, ok
}
