package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/internal/services"
	"github.com/AnshRaj112/hiddenmood-backend/pkg/utils"
)

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// RequestResetCode mails a six digit code to a registered email.
func RequestResetCode(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	user, err := deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		writeStoreError(w, err, "Email not found", "Internal server error")
		return
	}

	code, err := services.GenerateResetCode()
	if err != nil {
		logger.Error("reset code generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send code")
		return
	}
	if err := deps.ResetCodes.Save(ctx, user.Email, code); err != nil {
		logger.Error("reset code store failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send code")
		return
	}
	if err := deps.Mailer.SendResetCode(r.Context(), user.Email, code); err != nil {
		logger.Error("reset code email failed", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send code")
		return
	}

	logger.Info("reset code sent", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Verification code sent"})
}

// VerifyResetCode checks a mailed code. A correct code is consumed and
// unlocks one password reset for the next ten minutes. After
// MaxResetCodeAttempts wrong guesses the code is discarded.
func VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "Email and code are required")
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	ok, err := deps.ResetCodes.Verify(ctx, req.Email, req.Code)
	if err != nil {
		logger.Error("reset code lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !ok {
		attempts, err := deps.ResetCodes.RecordFailedAttempt(ctx, req.Email)
		if err != nil {
			logger.Warn("reset attempt counter failed", "error", err)
		}
		if attempts >= services.MaxResetCodeAttempts {
			if err := deps.ResetCodes.Discard(ctx, req.Email); err != nil {
				logger.Error("reset code discard failed", "error", err)
			}
			logger.Warn("reset code discarded after repeated wrong guesses", "attempts", attempts)
			writeError(w, http.StatusTooManyRequests, "Too many incorrect attempts. Please request a new code.")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid or expired code")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Code verified"})
}

// ResetPassword sets a new password for an email that passed VerifyResetCode.
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Email) == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Email and new password are required")
		return
	}
	if err := utils.ValidateStrongPassword(req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	user, err := deps.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		writeStoreError(w, err, "User not found", "Internal server error")
		return
	}
	if same, _ := utils.VerifyPassword(req.NewPassword, user.Password); same {
		writeError(w, http.StatusBadRequest, "New password cannot be the same as the current password")
		return
	}

	verified, err := deps.ResetCodes.ConsumeVerified(ctx, user.Email)
	if err != nil {
		logger.Error("reset verification lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !verified {
		writeError(w, http.StatusBadRequest, "Please verify your code before resetting the password")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	if err := deps.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		logStoreError("Failed to reset password", err)
		writeError(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	logger.Info("password reset", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Password reset successfully"})
}
