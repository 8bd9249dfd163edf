package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"olhopix/internal/auth/models"
	id "olhopix/pkg/domain"
	"olhopix/pkg/platform/sentinel"
	txcontext "olhopix/pkg/platform/tx"
)

// uniqueViolation is the postgres error code for unique constraint hits.
const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, tax_id, phone, password_hash, created_at)
		VALUES ($1, LOWER($2), $3, $4, NULLIF($5, ''), $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		user.ID.String(), user.Email, user.Name, user.TaxID, user.Phone,
		user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `
		SELECT id, email, name, tax_id, COALESCE(phone, ''), password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(s.execer(ctx).QueryRowContext(ctx, query, userID.String()))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, tax_id, COALESCE(phone, ''), password_hash, created_at
		FROM users
		WHERE email = LOWER($1)
	`
	return s.scanUser(s.execer(ctx).QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) scanUser(row *sql.Row) (*models.User, error) {
	var (
		user  models.User
		rawID string
	)
	err := row.Scan(&rawID, &user.Email, &user.Name, &user.TaxID, &user.Phone,
		&user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse stored user id: %w", err)
	}
	user.ID = userID
	return &user, nil
}
