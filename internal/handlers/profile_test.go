package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
	"github.com/AnshRaj112/hiddenmood-backend/pkg/utils"
)

type fakeImages struct {
	uploaded  []string
	deleted   []string
	deleteErr error
}

func (f *fakeImages) UploadProfileImage(ctx context.Context, userID string, fh *multipart.FileHeader) (string, error) {
	f.uploaded = append(f.uploaded, fh.Filename)
	return "https://res.cloudinary.com/demo/profile-img/profile-" + userID, nil
}

func (f *fakeImages) DeleteProfileImage(ctx context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	return f.deleteErr
}

// multipartProfile builds a PUT /api/profile request with form fields and an
// optional image part.
func multipartProfile(t *testing.T, userID string, fields map[string]string, imageType string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if image != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="profileImage"; filename="me.png"`)
		h.Set("Content-Type", imageType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		part.Write(image)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPut, "/api/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	token, err := middleware.SignToken(userID, "Sari", "sari@example.com")
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "user-1", "sari@example.com", "Secret12")

	rec := env.do(t, http.MethodGet, "/api/profile", "user-1", "")
	expectStatus(t, rec, http.StatusOK)
	user, _ := decodeBody(t, rec)["user"].(map[string]interface{})
	if user["user_id"] != "user-1" || user["email"] != "sari@example.com" {
		t.Errorf("Unexpected profile: %v", user)
	}

	rec = env.do(t, http.MethodGet, "/api/profile", "ghost", "")
	expectError(t, rec, http.StatusNotFound, "User not found")
}

func TestUpdateProfileJSON(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "user-1", "sari@example.com", "Old-pass1!")

	rec := env.do(t, http.MethodPut, "/api/profile", "user-1", `{"name":"  Sari Dewi "}`)
	expectStatus(t, rec, http.StatusOK)
	if user, _ := decodeBody(t, rec)["user"].(map[string]interface{}); user["name"] != "Sari Dewi" {
		t.Errorf("Expected updated name, got %v", user["name"])
	}

	rec = env.do(t, http.MethodPut, "/api/profile", "user-1", `{"name":"X"}`)
	expectError(t, rec, http.StatusBadRequest, "Name must be between 2 and 50 characters long")

	rec = env.do(t, http.MethodPut, "/api/profile", "user-1", `{"currentPassword":"wrong-pass1!","newPassword":"N3w-pass!"}`)
	expectError(t, rec, http.StatusBadRequest, "Invalid current password")

	rec = env.do(t, http.MethodPut, "/api/profile", "user-1", `{"currentPassword":"Old-pass1!","newPassword":"Old-pass1!"}`)
	expectError(t, rec, http.StatusBadRequest, "New password cannot be the same as the current password")

	rec = env.do(t, http.MethodPut, "/api/profile", "user-1", `{"currentPassword":"Old-pass1!","newPassword":"N3w-pass!"}`)
	expectStatus(t, rec, http.StatusOK)
	user, _ := env.users.GetByID(context.Background(), "user-1")
	if ok, _ := utils.VerifyPassword("N3w-pass!", user.Password); !ok {
		t.Error("Expected the new password to be stored")
	}

	// Only one of the two password fields leaves the password alone.
	rec = env.do(t, http.MethodPut, "/api/profile", "user-1", `{"newPassword":"Another-1!"}`)
	expectStatus(t, rec, http.StatusOK)
	user, _ = env.users.GetByID(context.Background(), "user-1")
	if ok, _ := utils.VerifyPassword("N3w-pass!", user.Password); !ok {
		t.Error("Password should be unchanged without currentPassword")
	}
}

func TestUpdateProfileImage(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "user-1", "sari@example.com", "Secret12")
	png := []byte("\x89PNG\r\n\x1a\nfake")

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, multipartProfile(t, "user-1", nil, "image/png", png))
	expectError(t, rec, http.StatusInternalServerError, "Image uploads are not configured")

	images := &fakeImages{}
	deps.Images = images

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, multipartProfile(t, "user-1", nil, "text/plain", []byte("hello")))
	expectError(t, rec, http.StatusBadRequest, "Only image files are allowed")

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, multipartProfile(t, "user-1", map[string]string{"name": "Sari Dewi"}, "image/png", png))
	expectStatus(t, rec, http.StatusOK)

	user, _ := decodeBody(t, rec)["user"].(map[string]interface{})
	if user["img"] != "https://res.cloudinary.com/demo/profile-img/profile-user-1" {
		t.Errorf("Expected uploaded image url, got %v", user["img"])
	}
	if user["name"] != "Sari Dewi" {
		t.Errorf("Expected name from the form, got %v", user["name"])
	}
	if len(images.uploaded) != 1 || images.uploaded[0] != "me.png" {
		t.Errorf("Expected one upload, got %v", images.uploaded)
	}
}

func TestDeleteProfile(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "user-1", "sari@example.com", "Secret12")
	env.users.UpdateImage(context.Background(), user.ID, "https://res.cloudinary.com/demo/profile-img/profile-user-1")
	env.history.entries = append(env.history.entries,
		historyEntry("a", "user-1", testNow, "low", 10, "calm", ""),
		historyEntry("b", "user-2", testNow, "low", 10, "calm", ""),
	)
	images := &fakeImages{deleteErr: errors.New("cloudinary down")}
	deps.Images = images

	rec := env.do(t, http.MethodDelete, "/api/profile", "user-1", "")
	expectStatus(t, rec, http.StatusOK)
	if msg := decodeBody(t, rec)["message"]; msg != "Account deleted successfully" {
		t.Errorf("Unexpected message %v", msg)
	}

	if len(env.history.entries) != 1 || env.history.entries[0].UserID != "user-2" {
		t.Errorf("Expected only other users' history to remain, got %+v", env.history.entries)
	}
	if len(images.deleted) != 1 {
		t.Errorf("Expected an image cleanup attempt, got %v", images.deleted)
	}
	if _, err := env.users.GetByID(context.Background(), "user-1"); err == nil {
		t.Error("Expected the account to be removed")
	}

	rec = env.do(t, http.MethodDelete, "/api/profile", "user-1", "")
	expectError(t, rec, http.StatusNotFound, "User not found")
}
