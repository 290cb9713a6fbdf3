package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

type AuthHandler struct {
	dbclient core.DbClient
	secret   string
	logger   *slog.Logger
}

func NewAuthHandler(dbclient core.DbClient, secret string, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AuthHandler{dbclient: dbclient, secret: secret, logger: logger}
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	IsAdmin   bool   `json:"is_admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  userOutput `json:"user"`
}

type userOutput struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "email and a password of at least 8 characters are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		FirstName:    req.FirstName,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsAdmin:      req.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.dbclient.CreateUser(r.Context(), user); err != nil {
		h.logger.Warn("signup rejected", "email", req.Email, "error", err)
		writeError(w, http.StatusConflict, "user exists")
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserOutput(user)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := h.dbclient.GetUserByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil || user == nil ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateJWT(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserOutput(user)})
}

func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(h.secret))
}

func toUserOutput(u *models.User) userOutput {
	return userOutput{ID: u.ID, FirstName: u.FirstName, Email: u.Email, IsAdmin: u.IsAdmin}
}
