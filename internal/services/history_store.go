package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// HistoryStore is the persistence boundary for curhat history. List methods
// return entries newest first.
type HistoryStore interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]models.HistoryEntry, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error)
	ListByUser(ctx context.Context, userID string) ([]models.HistoryEntry, error)
	Get(ctx context.Context, userID, entryID string) (*models.HistoryEntry, error)
	Insert(ctx context.Context, entry *models.HistoryEntry) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// The public feedback board only ever sees rows owned by a
	// models.FeedbackOwnerPrefix owner; user history stays private.
	ListFeedback(ctx context.Context) ([]models.HistoryEntry, error)
	GetFeedback(ctx context.Context, entryID string) (*models.HistoryEntry, error)
	DeleteFeedback(ctx context.Context, entryID string) error
}

// feedbackOwnerPattern matches models.FeedbackOwnerPrefix with the
// underscore escaped for LIKE.
var feedbackOwnerPattern = strings.ReplaceAll(models.FeedbackOwnerPrefix, "_", `\_`) + "%"

const historyColumns = `history_id, user_id, stress_level, stress_percent, emotion, text, feedback, video_link, created_at`

// PostgresHistoryStore implements HistoryStore on the history table.
type PostgresHistoryStore struct {
	db *sql.DB
}

func NewPostgresHistoryStore(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) ListSince(ctx context.Context, userID string, since time.Time) ([]models.HistoryEntry, error) {
	return s.query(ctx, `
		SELECT `+historyColumns+` FROM history
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC, history_id ASC
	`, userID, since)
}

func (s *PostgresHistoryStore) ListRecent(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	return s.query(ctx, `
		SELECT `+historyColumns+` FROM history
		WHERE user_id = $1
		ORDER BY created_at DESC, history_id ASC
		LIMIT $2
	`, userID, limit)
}

func (s *PostgresHistoryStore) ListByUser(ctx context.Context, userID string) ([]models.HistoryEntry, error) {
	return s.query(ctx, `
		SELECT `+historyColumns+` FROM history
		WHERE user_id = $1
		ORDER BY created_at DESC, history_id ASC
	`, userID)
}

func (s *PostgresHistoryStore) ListFeedback(ctx context.Context) ([]models.HistoryEntry, error) {
	return s.query(ctx, `
		SELECT `+historyColumns+` FROM history
		WHERE user_id LIKE $1
		ORDER BY created_at DESC, history_id ASC
	`, feedbackOwnerPattern)
}

// Get returns the entry only when it belongs to userID.
func (s *PostgresHistoryStore) Get(ctx context.Context, userID, entryID string) (*models.HistoryEntry, error) {
	return s.queryOne(ctx, `
		SELECT `+historyColumns+` FROM history
		WHERE history_id = $1 AND user_id = $2
	`, entryID, userID)
}

func (s *PostgresHistoryStore) GetFeedback(ctx context.Context, entryID string) (*models.HistoryEntry, error) {
	return s.queryOne(ctx, `
		SELECT `+historyColumns+` FROM history
		WHERE history_id = $1 AND user_id LIKE $2
	`, entryID, feedbackOwnerPattern)
}

// Insert assigns an id when the entry has none and fills CreatedAt from the
// database clock.
func (s *PostgresHistoryStore) Insert(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	videos := entry.VideoLinks
	if videos == nil {
		videos = []string{}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO history (history_id, user_id, stress_level, stress_percent, emotion, text, feedback, video_link, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`, entry.ID, entry.UserID, entry.StressLevel, entry.StressPercent,
		nullString(entry.Emotion), entry.Text, nullString(entry.Feedback), pq.Array(videos),
	).Scan(&entry.CreatedAt)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// DeleteFeedback removes one feedback row. Ids of user history rows are
// reported as ErrNotFound, like missing ids.
func (s *PostgresHistoryStore) DeleteFeedback(ctx context.Context, entryID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE history_id = $1 AND user_id LIKE $2`, entryID, feedbackOwnerPattern)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *PostgresHistoryStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE user_id = $1`, userID)
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *PostgresHistoryStore) query(ctx context.Context, query string, args ...interface{}) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0)
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return entries, nil
}

func (s *PostgresHistoryStore) queryOne(ctx context.Context, query string, args ...interface{}) (*models.HistoryEntry, error) {
	entry, err := scanHistory(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHistory(row rowScanner) (*models.HistoryEntry, error) {
	var (
		e        models.HistoryEntry
		level    sql.NullString
		percent  sql.NullFloat64
		emotion  sql.NullString
		feedback sql.NullString
		videos   []string
	)
	if err := row.Scan(&e.ID, &e.UserID, &level, &percent, &emotion, &e.Text, &feedback, pq.Array(&videos), &e.CreatedAt); err != nil {
		return nil, err
	}
	if level.Valid {
		e.StressLevel = &level.String
	}
	if percent.Valid {
		e.StressPercent = &percent.Float64
	}
	e.Emotion = emotion.String
	e.Feedback = feedback.String
	if videos == nil {
		videos = []string{}
	}
	e.VideoLinks = videos
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
