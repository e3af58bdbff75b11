package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"github.com/AnshRaj112/hiddenmood-backend/pkg/utils"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string                 `json:"message"`
	User    map[string]interface{} `json:"user"`
	Token   string                 `json:"token"`
}

// Register creates an account and returns a token for it.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	name, err := utils.ValidateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	user := &models.User{Name: name, Email: req.Email, Password: hash}
	if err := deps.Users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "Email is already registered")
			return
		}
		logStoreError("Registration failed", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := middleware.SignToken(user.ID, user.Name, user.Email)
	if err != nil {
		logger.Error("token signing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    user.Public(),
		Token:   token,
	})
}

// Login exchanges email and password for a token. Unknown emails and wrong
// passwords get the same 401.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	user, err := deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		logStoreError("Login failed", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil {
		logger.Error("stored password hash is unreadable", "user_id", user.ID, "error", err)
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := middleware.SignToken(user.ID, user.Name, user.Email)
	if err != nil {
		logger.Error("token signing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    user.Public(),
		Token:   token,
	})
}
