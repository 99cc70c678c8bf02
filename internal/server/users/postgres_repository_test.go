package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/contacthub/internal/common"
)

func userRows(u *User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "hashed_password",
		"refresh_token", "confirmed", "avatar", "role", "created_at",
	}).AddRow(u.ID, u.Username, u.Email, u.HashedPassword,
		nullable(u.RefreshToken), u.Confirmed, nullable(u.Avatar), u.Role, u.CreatedAt)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func TestPostgresRepositoryGetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	want := &User{
		ID:             "11111111-1111-1111-1111-111111111111",
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "hash",
		Confirmed:      true,
		Role:           "USER",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(userRows(want))

	got, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryGetByUsernameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryGetByUsernameAndRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1 AND refresh_token = \\$2").
		WithArgs("alice", "stale-token").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByUsernameAndRefreshToken(context.Background(), "alice", "stale-token")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryCreateUniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"email conflict", "users_email_key", ErrEmailTaken},
		{"username conflict", "users_username_key", ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewPostgresRepository(db)

			mock.ExpectQuery("INSERT INTO users").
				WillReturnError(&pgconn.PgError{
					Code:           pgerrcode.UniqueViolation,
					ConstraintName: tt.constraint,
				})

			_, err = repo.Create(context.Background(), &User{
				Username: "alice", Email: "alice@example.com", HashedPassword: "hash", Role: "USER",
			})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, common.ErrorAlreadyExists)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)
	created := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	user, err := repo.Create(context.Background(), &User{
		Username: "alice", Email: "alice@example.com", HashedPassword: "hash", Role: "USER",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, created, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryUpdateRefreshToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE users SET refresh_token").
		WithArgs("uid-1", "new-token").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateRefreshToken(context.Background(), "uid-1", "new-token")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE users SET confirmed").
		WithArgs("nobody@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.ConfirmEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
