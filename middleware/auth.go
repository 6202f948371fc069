package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"iris-api/models"
	"iris-api/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

// UserLookup is satisfied by repository.Store.
type UserLookup interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue creates a token for the user.
func (t *TokenIssuer) Issue(user models.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		UserID:   user.UserID,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies the signature and expiry of a token.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", services.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, fmt.Errorf("invalid token claims: %w", services.ErrUnauthorized)
	}
	return claims, nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   msg,
		"code":    "UNAUTHORIZED",
	})
}

// AuthMiddleware validates the bearer token and stores the caller's identity
// on the context. The SSE stream cannot set headers, so a token query
// parameter is accepted as a fallback.
func AuthMiddleware(issuer *TokenIssuer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				abortUnauthorized(c, "Invalid authorization header format")
				return
			}
		} else if q := c.Query("token"); q != "" {
			tokenString = q
		} else {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		// Check if user still exists
		user, err := users.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c, "User not found")
			return
		}

		c.Set(identityKey, services.Identity{
			UserID:   user.UserID,
			FullName: user.FullName,
			Email:    user.Email,
		})
		c.Next()
	}
}

// IdentityFrom returns the identity set by AuthMiddleware. The zero value
// is returned on unauthenticated routes and is rejected by the services.
func IdentityFrom(c *gin.Context) services.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(services.Identity); ok {
			return id
		}
	}
	return services.Identity{}
}
