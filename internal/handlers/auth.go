package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"moodring/internal/apperror"
	"moodring/internal/models"
	"moodring/internal/store"
)

type AuthHandler struct {
	users     store.UserStore
	jwtSecret []byte
	logger    *zap.Logger
}

func NewAuthHandler(users store.UserStore, jwtSecret []byte, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, logger: logger}
}

type credentials struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"display_name,omitempty"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(h.logger, w, apperror.InvalidArgument("body", "invalid body"))
		return
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	if c.Email == "" || c.Password == "" {
		writeError(h.logger, w, apperror.InvalidArgument("email", "email and password required"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	user := &models.User{Email: c.Email, PasswordHash: string(hashed), DisplayName: c.DisplayName}
	if err := h.users.Create(r.Context(), user); err != nil {
		writeError(h.logger, w, err)
		return
	}

	token, err := h.issueJWT(user.ID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(h.logger, w, apperror.InvalidArgument("body", "invalid body"))
		return
	}
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	if c.Email == "" || c.Password == "" {
		writeError(h.logger, w, apperror.InvalidArgument("email", "email and password required"))
		return
	}

	user, err := h.users.GetByEmail(r.Context(), c.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeError(h.logger, w, apperror.Unauthorized("invalid credentials"))
			return
		}
		writeError(h.logger, w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		writeError(h.logger, w, apperror.Unauthorized("invalid credentials"))
		return
	}

	token, err := h.issueJWT(user.ID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) issueJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}
