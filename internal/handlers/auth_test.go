package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"github.com/AnshRaj112/hiddenmood-backend/pkg/utils"
)

func seedUser(t *testing.T, env *testEnv, id, email, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := &models.User{ID: id, Name: "Sari", Email: email, Password: hash}
	if err := env.users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", `{"name":"  Sari  ","email":"Sari@Example.com","password":"Secret12"}`)
	expectStatus(t, rec, http.StatusCreated)

	body := decodeBody(t, rec)
	if body["token"] == "" || body["token"] == nil {
		t.Error("Expected a token")
	}
	user, _ := body["user"].(map[string]interface{})
	if user["name"] != "Sari" || user["email"] != "sari@example.com" {
		t.Errorf("Unexpected user: %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Error("Password hash must not be returned")
	}

	rec = env.do(t, http.MethodPost, "/api/auth/register", "", `{"name":"Other","email":"sari@example.com","password":"Secret12"}`)
	expectError(t, rec, http.StatusBadRequest, "Email is already registered")
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		body    string
		message string
	}{
		{`{"email":"a@b.com","password":"Secret12"}`, "All fields are required"},
		{`{"name":"S","email":"a@b.com","password":"Secret12"}`, "Name must be between 2 and 50 characters long"},
		{`{"name":"Sari","email":"a@b.org","password":"Secret12"}`, "Please enter a valid email address"},
		{`{"name":"Sari","email":"a@b.com","password":"secret12"}`, "Password must be at least 6 characters long and contain at least one uppercase letter, one lowercase letter, and one number"},
	}
	for _, tt := range tests {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
		expectError(t, rec, http.StatusBadRequest, tt.message)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	seedUser(t, env, "user-1", "sari@example.com", "Secret12")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"SARI@example.com","password":"Secret12"}`)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	if body["message"] != "Login successful" || body["token"] == nil {
		t.Errorf("Unexpected login response: %v", body)
	}

	// The issued token opens authenticated routes.
	rec = env.do(t, http.MethodGet, "/api/profile", "user-1", "")
	expectStatus(t, rec, http.StatusOK)

	for _, bad := range []string{
		`{"email":"sari@example.com","password":"Wrong123"}`,
		`{"email":"nobody@example.com","password":"Secret12"}`,
	} {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", bad)
		expectError(t, rec, http.StatusUnauthorized, "Invalid email or password")
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"sari@example.com"}`)
	expectError(t, rec, http.StatusBadRequest, "Email and password are required")
}
