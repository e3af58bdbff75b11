package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/middleware"
	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var testNow = time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

type memHistory struct {
	mu        sync.Mutex
	entries   []models.HistoryEntry
	err       error
	insertErr error
	lastSince time.Time
	lastLimit int
}

func (m *memHistory) sorted(keep func(models.HistoryEntry) bool) []models.HistoryEntry {
	out := make([]models.HistoryEntry, 0)
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memHistory) ListSince(ctx context.Context, userID string, since time.Time) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSince = since
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(e models.HistoryEntry) bool {
		return e.UserID == userID && !e.CreatedAt.Before(since)
	}), nil
}

func (m *memHistory) ListRecent(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	out := m.sorted(func(e models.HistoryEntry) bool { return e.UserID == userID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHistory) ListByUser(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(e models.HistoryEntry) bool { return e.UserID == userID }), nil
}

func (m *memHistory) ListFeedback(ctx context.Context) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(e models.HistoryEntry) bool { return e.IsFeedback() }), nil
}

func (m *memHistory) Get(ctx context.Context, userID, entryID string) (*models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == entryID && e.UserID == userID {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memHistory) GetFeedback(ctx context.Context, entryID string) (*models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == entryID && e.IsFeedback() {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memHistory) Insert(ctx context.Context, entry *models.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = testNow
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memHistory) DeleteFeedback(ctx context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == entryID && e.IsFeedback() {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *memHistory) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	var removed int64
	for _, e := range m.entries {
		if e.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = testNow
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// put stores a bare account without hashing a password.
func (m *memUsers) put(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &models.User{ID: id, Name: "Sari", Email: id + "@example.com", CreatedAt: testNow}
}

func (m *memUsers) GetByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memUsers) update(userID string, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *memUsers) UpdateName(ctx context.Context, userID, name string) error {
	return m.update(userID, func(u *models.User) { u.Name = name })
}

func (m *memUsers) UpdatePassword(ctx context.Context, userID, hash string) error {
	return m.update(userID, func(u *models.User) { u.Password = hash })
}

func (m *memUsers) UpdateImage(ctx context.Context, userID, url string) error {
	return m.update(userID, func(u *models.User) { u.Img = &url })
}

func (m *memUsers) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.users, userID)
	return nil
}

type stubClassifier struct {
	analysis *models.Analysis
	err      error
	texts    []string
}

func (s *stubClassifier) Analyze(ctx context.Context, text string) (*models.Analysis, error) {
	s.texts = append(s.texts, text)
	if s.err != nil {
		return nil, s.err
	}
	a := *s.analysis
	return &a, nil
}

type memResetCodes struct {
	codes    map[string]string
	verified map[string]bool
	attempts map[string]int64
}

func newMemResetCodes() *memResetCodes {
	return &memResetCodes{codes: map[string]string{}, verified: map[string]bool{}, attempts: map[string]int64{}}
}

func (m *memResetCodes) Save(ctx context.Context, email, code string) error {
	email = strings.ToLower(email)
	m.codes[email] = code
	delete(m.verified, email)
	delete(m.attempts, email)
	return nil
}

func (m *memResetCodes) RecordFailedAttempt(ctx context.Context, email string) (int64, error) {
	email = strings.ToLower(email)
	m.attempts[email]++
	return m.attempts[email], nil
}

func (m *memResetCodes) Discard(ctx context.Context, email string) error {
	email = strings.ToLower(email)
	delete(m.codes, email)
	delete(m.attempts, email)
	return nil
}

func (m *memResetCodes) Verify(ctx context.Context, email, code string) (bool, error) {
	email = strings.ToLower(email)
	if stored, ok := m.codes[email]; !ok || stored != code {
		return false, nil
	}
	delete(m.codes, email)
	delete(m.attempts, email)
	m.verified[email] = true
	return true, nil
}

func (m *memResetCodes) ConsumeVerified(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(email)
	ok := m.verified[email]
	delete(m.verified, email)
	return ok, nil
}

type recordingMailer struct {
	sent map[string]string
	err  error
}

func (m *recordingMailer) SendResetCode(ctx context.Context, to, code string) error {
	if m.err != nil {
		return m.err
	}
	m.sent[to] = code
	return nil
}

type staticArticles struct {
	articles []models.Article
	err      error
}

func (s *staticArticles) List(ctx context.Context) ([]models.Article, error) {
	return s.articles, s.err
}

type testEnv struct {
	history    *memHistory
	users      *memUsers
	classifier *stubClassifier
	resetCodes *memResetCodes
	mailer     *recordingMailer
	articles   *staticArticles
	router     chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	middleware.InitAuth("handlers-test-secret")

	analysis := &models.Analysis{}
	analysis.Normalize()

	env := &testEnv{
		history:    &memHistory{},
		users:      newMemUsers(),
		classifier: &stubClassifier{analysis: analysis},
		resetCodes: newMemResetCodes(),
		mailer:     &recordingMailer{sent: map[string]string{}},
		articles:   &staticArticles{},
	}
	Init(Dependencies{
		History:    env.history,
		Users:      env.users,
		Classifier: env.classifier,
		Articles:   env.articles,
		ResetCodes: env.resetCodes,
		Mailer:     env.mailer,
		Location:   time.UTC,
		Now:        func() time.Time { return testNow },
	})

	r := chi.NewRouter()
	r.Post("/api/auth/register", Register)
	r.Post("/api/auth/login", Login)
	r.Post("/api/forgot-password/request", RequestResetCode)
	r.Post("/api/forgot-password/verify", VerifyResetCode)
	r.Post("/api/forgot-password/reset", ResetPassword)
	r.With(middleware.OptionalAuth).Post("/api/curhat", Curhat)
	r.Get("/api/articles", GetArticles)
	r.Get("/api/feedback", GetFeedbacks)
	r.Post("/api/feedback", SubmitFeedback)
	r.Get("/api/feedback/{id}", GetFeedback)
	r.Delete("/api/feedback/{id}", DeleteFeedback)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/api/dashboard/summary", DashboardSummary)
		r.Get("/api/dashboard/weekly-stats", WeeklyStats)
		r.Get("/api/dashboard/recent", RecentHistory)
		r.Get("/api/history", GetHistory)
		r.Get("/api/history/{historyId}", GetHistoryItem)
		r.Get("/api/profile", GetProfile)
		r.Put("/api/profile", UpdateProfile)
		r.Delete("/api/profile", DeleteProfile)
	})
	env.router = r
	return env
}

// do sends a request with an optional JSON body, authenticated as userID when
// it is not empty.
func (env *testEnv) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, err := middleware.SignToken(userID, "Test User", userID+"@example.com")
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Response is not a JSON object: %v (%s)", err, rec.Body.String())
	}
	return body
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var list []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("Response is not a JSON array: %v (%s)", err, rec.Body.String())
	}
	return list
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	expectStatus(t, rec, status)
	if got := decodeBody(t, rec)["error"]; got != message {
		t.Errorf("Expected error %q, got %v", message, got)
	}
}

func historyEntry(id, userID string, createdAt time.Time, level string, percent float64, emotion, feedback string) models.HistoryEntry {
	return models.HistoryEntry{
		ID:            id,
		UserID:        userID,
		StressLevel:   &level,
		StressPercent: &percent,
		Emotion:       emotion,
		Text:          "entry " + id,
		Feedback:      feedback,
		VideoLinks:    []string{},
		CreatedAt:     createdAt,
	}
}
