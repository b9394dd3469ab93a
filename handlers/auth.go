package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/arbormap/lineagebackend/models"
	"github.com/arbormap/lineagebackend/repository"
)

type AuthHandler struct {
	UserRepo           repository.UserRepositoryInterface
	JWTSecret          []byte
	JWTExpirationHours int
}

func NewAuthHandler(userRepo repository.UserRepositoryInterface, jwtSecret string, expirationHours int) *AuthHandler {
	return &AuthHandler{
		UserRepo:           userRepo,
		JWTSecret:          []byte(jwtSecret),
		JWTExpirationHours: expirationHours,
	}
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		return
	}

	user, err := h.UserRepo.GetByUsername(payload.Username)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		return
	}

	if !user.CheckPassword(payload.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
		return
	}

	expirationTime := time.Now().Add(time.Duration(h.JWTExpirationHours) * time.Hour)
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(user.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "lineagebackend",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTSecret)
	if err != nil {
		log.Printf("Error signing token for user %d: %v", user.ID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     tokenString,
		User:      *user,
		ExpiresAt: expirationTime,
	})
}

type RegisterPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user account. The first account is created
// without credentials to bootstrap the instance; once any user exists,
// only an authenticated user may add further editor accounts.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if strings.TrimSpace(payload.Username) == "" || payload.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password are required"})
		return
	}

	userCount, err := h.UserRepo.CountAll()
	if err != nil {
		log.Printf("Error counting users for registration: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to verify registration eligibility"})
		return
	}
	if userCount > 0 {
		if user, code, detail := authenticateRequest(r, h.UserRepo, h.JWTSecret); user == nil {
			WriteAPIError(w, http.StatusUnauthorized, code, detail)
			return
		}
	}

	if _, err := h.UserRepo.GetByUsername(payload.Username); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Username already taken"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error checking username %s: %v", payload.Username, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to verify username"})
		return
	}

	newUser := &models.User{Username: strings.TrimSpace(payload.Username)}
	if err := newUser.SetPassword(payload.Password); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
		return
	}

	if err := h.UserRepo.Create(newUser); err != nil {
		log.Printf("Error creating user %s: %v", payload.Username, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create user"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully. Please log in."})
}

// CurrentUser retrieves the authenticated user from the request context.
// This handler must sit behind the AuthMiddleware.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok || user == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not retrieve user from context"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}
