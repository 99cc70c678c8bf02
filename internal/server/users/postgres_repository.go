package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/contacthub/internal/common"
	"github.com/dmitrijs2005/contacthub/internal/dbx"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, refresh_token, confirmed, avatar, role, created_at`

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	var refreshToken, avatar sql.NullString

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&refreshToken, &user.Confirmed, &avatar, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.RefreshToken = refreshToken.String
	user.Avatar = avatar.String
	return user, nil
}

// conflictError maps a unique violation to the sentinel naming the
// conflicting column, so a registration losing the race still reports which
// field was taken. Returns nil for any other error.
func conflictError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// Create inserts a new user and returns it with the generated ID and
// creation time. A duplicate username or email yields ErrUsernameTaken or
// ErrEmailTaken respectively.
func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (id, username, email, hashed_password, confirmed, avatar, role)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
		RETURNING created_at
	`
	user.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword,
		user.Confirmed, user.Avatar, user.Role).Scan(&user.CreatedAt)
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			return nil, conflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByUsernameAndRefreshToken(ctx context.Context, username, refreshToken string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND refresh_token = $2`
	return scanUser(r.db.QueryRowContext(ctx, query, username, refreshToken))
}

// UpdateRefreshToken overwrites the stored refresh token for the user,
// invalidating whatever was stored before.
func (r *PostgresRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error {
	query := `UPDATE users SET refresh_token = $2 WHERE id = $1`
	return r.execExpectingRow(ctx, query, userID, refreshToken)
}

func (r *PostgresRepository) ConfirmEmail(ctx context.Context, email string) error {
	query := `UPDATE users SET confirmed = TRUE WHERE email = $1`
	return r.execExpectingRow(ctx, query, email)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, email, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $2 WHERE email = $1`
	return r.execExpectingRow(ctx, query, email, hashedPassword)
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, email, avatarURL string) error {
	query := `UPDATE users SET avatar = $2 WHERE email = $1`
	return r.execExpectingRow(ctx, query, email, avatarURL)
}

// execExpectingRow runs an UPDATE that must touch exactly one row and maps a
// zero row count to common.ErrorNotFound.
func (r *PostgresRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
