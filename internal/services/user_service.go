package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/AnshRaj112/hiddenmood-backend/internal/apperrors"
	"github.com/AnshRaj112/hiddenmood-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// UserStore persists accounts. Emails are compared case-insensitively.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateName(ctx context.Context, userID, name string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateImage(ctx context.Context, userID, imageURL string) error
	Delete(ctx context.Context, userID string) error
}

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Create inserts the user, assigning an id when missing. A duplicate email
// returns ErrEmailTaken.
func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (user_id, name, email, password, img, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`, user.ID, user.Name, user.Email, user.Password, user.Img).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.ErrEmailTaken
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	return s.queryOne(ctx, `
		SELECT user_id, name, email, password, img, created_at
		FROM users WHERE user_id = $1
	`, userID)
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.queryOne(ctx, `
		SELECT user_id, name, email, password, img, created_at
		FROM users WHERE LOWER(email) = $1
	`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *PostgresUserStore) UpdateName(ctx context.Context, userID, name string) error {
	return s.exec(ctx, `UPDATE users SET name = $1 WHERE user_id = $2`, name, userID)
}

func (s *PostgresUserStore) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.exec(ctx, `UPDATE users SET password = $1 WHERE user_id = $2`, passwordHash, userID)
}

func (s *PostgresUserStore) UpdateImage(ctx context.Context, userID, imageURL string) error {
	return s.exec(ctx, `UPDATE users SET img = $1 WHERE user_id = $2`, imageURL, userID)
}

func (s *PostgresUserStore) Delete(ctx context.Context, userID string) error {
	return s.exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
}

func (s *PostgresUserStore) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) queryOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var (
		u   models.User
		img sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &img, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if img.Valid {
		u.Img = &img.String
	}
	return &u, nil
}
