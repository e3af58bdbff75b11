package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/logger"
	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
	"github.com/AnshRaj112/hiddenmood-backend/pkg/utils"
)

const (
	maxProfileImageSize = 5 << 20
	maxProfileFormSize  = maxProfileImageSize + 1<<20
)

type profileUpdate struct {
	Name            string `json:"name"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	image           *multipart.FileHeader
}

// GetProfile returns the caller's public profile.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	ctx, cancel := storeContext(r)
	defer cancel()

	user, err := deps.Users.GetByID(ctx, userID)
	if err != nil {
		writeStoreError(w, err, "User not found", "Failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user.Public()})
}

// UpdateProfile changes the name, the password (when both currentPassword
// and newPassword are sent) and the profile image. It accepts multipart
// forms, and JSON when no image is uploaded.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	upd, err := readProfileUpdate(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := storeContext(r)
	defer cancel()

	user, err := deps.Users.GetByID(ctx, userID)
	if err != nil {
		writeStoreError(w, err, "User not found", "Failed to update profile")
		return
	}

	var newName, newHash string
	if strings.TrimSpace(upd.Name) != "" {
		if newName, err = utils.ValidateName(upd.Name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if upd.CurrentPassword != "" && upd.NewPassword != "" {
		if ok, _ := utils.VerifyPassword(upd.CurrentPassword, user.Password); !ok {
			writeError(w, http.StatusBadRequest, "Invalid current password")
			return
		}
		if err := utils.ValidateStrongPassword(upd.NewPassword); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if same, _ := utils.VerifyPassword(upd.NewPassword, user.Password); same {
			writeError(w, http.StatusBadRequest, "New password cannot be the same as the current password")
			return
		}
		if newHash, err = utils.HashPassword(upd.NewPassword); err != nil {
			logger.Error("password hashing failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	if upd.image != nil {
		if upd.image.Size > maxProfileImageSize {
			writeError(w, http.StatusBadRequest, "Image size too large (max 5MB)")
			return
		}
		if !strings.HasPrefix(upd.image.Header.Get("Content-Type"), "image/") {
			writeError(w, http.StatusBadRequest, "Only image files are allowed")
			return
		}
		if deps.Images == nil {
			writeError(w, http.StatusInternalServerError, "Image uploads are not configured")
			return
		}
		// Uploads can be slow; they get the request context, not the store timeout.
		url, err := deps.Images.UploadProfileImage(r.Context(), userID, upd.image)
		if err != nil {
			logger.Error("profile image upload failed", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to upload image")
			return
		}
		if err := deps.Users.UpdateImage(ctx, userID, url); err != nil {
			logStoreError("Failed to update profile", err)
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		user.Img = &url
	}

	if newName != "" {
		if err := deps.Users.UpdateName(ctx, userID, newName); err != nil {
			logStoreError("Failed to update profile", err)
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
		user.Name = newName
	}
	if newHash != "" {
		if err := deps.Users.UpdatePassword(ctx, userID, newHash); err != nil {
			logStoreError("Failed to update profile", err)
			writeError(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User profile updated successfully",
		"user":    user.Public(),
	})
}

// DeleteProfile removes the caller's history, image and account, in that order.
func DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	ctx, cancel := storeContext(r)
	defer cancel()

	user, err := deps.Users.GetByID(ctx, userID)
	if err != nil {
		writeStoreError(w, err, "User not found", "Failed to delete account")
		return
	}

	removed, err := deps.History.DeleteByUser(ctx, userID)
	if err != nil {
		logStoreError("Failed to delete history data", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete history data")
		return
	}

	if user.Img != nil && deps.Images != nil {
		if err := deps.Images.DeleteProfileImage(r.Context(), userID); err != nil {
			logger.Warn("profile image cleanup failed", "user_id", userID, "error", err)
		}
	}

	if err := deps.Users.Delete(ctx, userID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logStoreError("Failed to delete user account", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete user account")
		return
	}

	logger.Info("account deleted", "user_id", userID, "history_rows", removed)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Account deleted successfully"})
}

func readProfileUpdate(w http.ResponseWriter, r *http.Request) (*profileUpdate, error) {
	upd := &profileUpdate{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(w, r, upd); err != nil {
			return nil, &utils.ValidationError{Field: "body", Message: "Invalid request body"}
		}
		return upd, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileFormSize)
	if err := r.ParseMultipartForm(maxProfileFormSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &utils.ValidationError{Field: "profileImage", Message: "Image size too large (max 5MB)"}
		}
		return nil, &utils.ValidationError{Field: "body", Message: "Invalid form data"}
	}

	upd.Name = r.FormValue("name")
	upd.CurrentPassword = r.FormValue("currentPassword")
	upd.NewPassword = r.FormValue("newPassword")
	if files := r.MultipartForm.File["profileImage"]; len(files) > 0 {
		upd.image = files[0]
	}
	return upd, nil
}
