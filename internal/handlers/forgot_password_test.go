package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/AnshRaj112/hiddenmood-backend/internal/services"
	"github.com/AnshRaj112/hiddenmood-backend/pkg/utils"
)

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "user-1", "sari@example.com", "Secret12")

	rec := env.do(t, http.MethodPost, "/api/forgot-password/request", "", `{"email":"Sari@example.com"}`)
	expectStatus(t, rec, http.StatusOK)
	code, ok := env.mailer.sent["sari@example.com"]
	if !ok || len(code) != 6 {
		t.Fatalf("Expected a six digit code to be mailed, got %q", code)
	}

	// Resetting before verifying is refused.
	rec = env.do(t, http.MethodPost, "/api/forgot-password/reset", "", `{"email":"sari@example.com","newPassword":"N3w-pass!"}`)
	expectError(t, rec, http.StatusBadRequest, "Please verify your code before resetting the password")

	rec = env.do(t, http.MethodPost, "/api/forgot-password/verify", "", `{"email":"sari@example.com","code":"000000x"}`)
	expectError(t, rec, http.StatusBadRequest, "Invalid or expired code")

	rec = env.do(t, http.MethodPost, "/api/forgot-password/verify", "", `{"email":"sari@example.com","code":"`+code+`"}`)
	expectStatus(t, rec, http.StatusOK)

	// A code works once.
	rec = env.do(t, http.MethodPost, "/api/forgot-password/verify", "", `{"email":"sari@example.com","code":"`+code+`"}`)
	expectError(t, rec, http.StatusBadRequest, "Invalid or expired code")

	rec = env.do(t, http.MethodPost, "/api/forgot-password/reset", "", `{"email":"sari@example.com","newPassword":"N3w-pass!"}`)
	expectStatus(t, rec, http.StatusOK)

	user, _ := env.users.GetByEmail(context.Background(), "sari@example.com")
	if ok, _ := utils.VerifyPassword("N3w-pass!", user.Password); !ok {
		t.Error("Expected the new password to be stored")
	}

	// The verification is consumed by the reset.
	rec = env.do(t, http.MethodPost, "/api/forgot-password/reset", "", `{"email":"sari@example.com","newPassword":"An0ther-pass!"}`)
	expectError(t, rec, http.StatusBadRequest, "Please verify your code before resetting the password")
}

func TestRequestResetCodeErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/forgot-password/request", "", `{"email":"nobody@example.com"}`)
	expectError(t, rec, http.StatusNotFound, "Email not found")

	rec = env.do(t, http.MethodPost, "/api/forgot-password/request", "", `{}`)
	expectError(t, rec, http.StatusBadRequest, "Email is required")

	seedUser(t, env, "user-1", "sari@example.com", "Secret12")
	env.mailer.err = errors.New("smtp down")
	rec = env.do(t, http.MethodPost, "/api/forgot-password/request", "", `{"email":"sari@example.com"}`)
	expectError(t, rec, http.StatusInternalServerError, "Failed to send code")
}

func TestResetPasswordRules(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "user-1", "sari@example.com", "Old-pass1!")

	rec := env.do(t, http.MethodPost, "/api/forgot-password/reset", "", `{"email":"sari@example.com","newPassword":"short"}`)
	expectError(t, rec, http.StatusBadRequest, "Password must be at least 8 characters long and include a mix of letters, numbers, and symbols.")

	rec = env.do(t, http.MethodPost, "/api/forgot-password/reset", "", `{"email":"nobody@example.com","newPassword":"N3w-pass!"}`)
	expectError(t, rec, http.StatusNotFound, "User not found")

	env.resetCodes.verified["sari@example.com"] = true
	rec = env.do(t, http.MethodPost, "/api/forgot-password/reset", "", `{"email":"sari@example.com","newPassword":"Old-pass1!"}`)
	expectError(t, rec, http.StatusBadRequest, "New password cannot be the same as the current password")
	if !env.resetCodes.verified["sari@example.com"] {
		t.Error("A rejected reset should not consume the verification")
	}
}

func TestVerifyResetCodeDiscardsAfterRepeatedMisses(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "user-1", "sari@example.com", "Secret12")

	rec := env.do(t, http.MethodPost, "/api/forgot-password/request", "", `{"email":"sari@example.com"}`)
	expectStatus(t, rec, http.StatusOK)
	code := env.mailer.sent["sari@example.com"]
	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}

	for i := 1; i < services.MaxResetCodeAttempts; i++ {
		rec = env.do(t, http.MethodPost, "/api/forgot-password/verify", "", `{"email":"sari@example.com","code":"`+wrong+`"}`)
		expectError(t, rec, http.StatusBadRequest, "Invalid or expired code")
	}
	rec = env.do(t, http.MethodPost, "/api/forgot-password/verify", "", `{"email":"sari@example.com","code":"`+wrong+`"}`)
	expectError(t, rec, http.StatusTooManyRequests, "Too many incorrect attempts. Please request a new code.")

	// The real code no longer works once it has been burned.
	rec = env.do(t, http.MethodPost, "/api/forgot-password/verify", "", `{"email":"sari@example.com","code":"`+code+`"}`)
	expectError(t, rec, http.StatusBadRequest, "Invalid or expired code")

	// A fresh code starts a fresh count.
	rec = env.do(t, http.MethodPost, "/api/forgot-password/request", "", `{"email":"sari@example.com"}`)
	expectStatus(t, rec, http.StatusOK)
	rec = env.do(t, http.MethodPost, "/api/forgot-password/verify", "", `{"email":"sari@example.com","code":"`+env.mailer.sent["sari@example.com"]+`"}`)
	expectStatus(t, rec, http.StatusOK)
}
