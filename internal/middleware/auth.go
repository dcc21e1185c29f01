package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

const identityKey = "identity"

// Identity is the authenticated caller resolved from the bearer token.
type Identity struct {
	UserID   uint
	Username string
	Role     string
}

type tokenClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken signs a token for the identity, valid for ttl.
func (a *Authenticator) IssueToken(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) parse(header string) (Identity, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return Identity{}, errors.New("missing bearer token")
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.UserID == 0 {
		return Identity{}, errors.New("token has no user")
	}

	role := claims.Role
	if role == "" {
		role = models.RoleUser
	}
	return Identity{UserID: claims.UserID, Username: claims.Username, Role: role}, nil
}

// RequireAuth rejects requests without a valid token.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.parse(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a valid token is present and
// lets anonymous requests through.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := a.parse(c.GetHeader("Authorization")); err == nil {
			c.Set(identityKey, id)
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by the auth middleware.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
