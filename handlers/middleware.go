package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arbormap/lineagebackend/models"
	"github.com/arbormap/lineagebackend/repository"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the key used to store the user object in the request context.
	UserContextKey ContextKey = "user"
)

// AuthMiddleware creates a middleware handler for JWT authentication.
// It verifies the token and, if valid, fetches the user and adds them to
// the request context.
func AuthMiddleware(userRepo repository.UserRepositoryInterface, jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, code, detail := authenticateRequest(r, userRepo, jwtSecret)
			if user == nil {
				WriteAPIError(w, http.StatusUnauthorized, code, detail)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticateRequest validates the Bearer token on r and resolves the
// user it names. On failure the user is nil and code/detail describe the
// rejection for the standardized error body.
func authenticateRequest(r *http.Request, userRepo repository.UserRepositoryInterface, jwtSecret []byte) (*models.User, string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, "missing_token", "Authorization header required"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, "malformed_token", "Authorization header format must be Bearer {token}"
	}
	tokenString := parts[1]

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, "invalid_token", "Invalid or expired token"
	}

	var userID uint
	if _, err := fmt.Sscan(claims.Subject, &userID); err != nil {
		log.Printf("Error parsing userID from token subject '%s': %v", claims.Subject, err)
		return nil, "invalid_token", "Invalid user ID in token"
	}

	user, err := userRepo.GetByID(userID)
	if err != nil {
		// the user may have been deleted after the token was issued
		return nil, "unknown_user", "User not found"
	}
	return user, "", ""
}
