package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"postboard/internal/models"
)

var userColumns = []string{"user_id", "email", "password_hash", "name", "avatar", "created_at"}

func newUserRepoMock(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestUserRepository_CreateUser(t *testing.T) {
	repo, mock := newUserRepoMock(t)
	ctx := context.Background()

	insert := `
		INSERT INTO users (user_id, email, password_hash, name, avatar, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	t.Run("creates user with hashed password", func(t *testing.T) {
		user := &models.User{Email: "test@example.com", Name: "Test", Avatar: "avatars/test.png"}

		mock.ExpectExec(insert).
			WithArgs(sqlmock.AnyArg(), "test@example.com", sqlmock.AnyArg(), "Test", "avatars/test.png", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.CreateUser(ctx, user, "password123")

		require.NoError(t, err)
		assert.NotEmpty(t, user.UserID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stores the normalized email", func(t *testing.T) {
		user := &models.User{Email: " Test@Example.COM ", Name: "Test"}

		mock.ExpectExec(insert).
			WithArgs(sqlmock.AnyArg(), "test@example.com", sqlmock.AnyArg(), "Test", "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.CreateUser(ctx, user, "password123"))
		assert.Equal(t, "test@example.com", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	duplicates := map[string]error{
		"lib/pq":  &pq.Error{Code: "23505", Constraint: "users_email_key"},
		"pgx":     &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email_lower"},
		"wrapped": fmt.Errorf("exec: %w", &pq.Error{Code: "23505"}),
	}
	for name, driverErr := range duplicates {
		t.Run("duplicate email via "+name, func(t *testing.T) {
			mock.ExpectExec(insert).WillReturnError(driverErr)

			err := repo.CreateUser(ctx, &models.User{Email: "test@example.com"}, "password123")

			assert.ErrorIs(t, err, ErrDuplicateEmail)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("other constraint errors are not duplicates", func(t *testing.T) {
		mock.ExpectExec(insert).WillReturnError(&pq.Error{Code: "23502", Message: "null value in column"})

		err := repo.CreateUser(ctx, &models.User{Email: "test@example.com"}, "password123")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("message text alone is not a duplicate", func(t *testing.T) {
		mock.ExpectExec(insert).
			WillReturnError(errors.New(`duplicate key value violates unique constraint "users_email_key"`))

		err := repo.CreateUser(ctx, &models.User{Email: "test@example.com"}, "password123")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestUserRepository_GetUserByID(t *testing.T) {
	repo, mock := newUserRepoMock(t)
	ctx := context.Background()
	userID := uuid.New().String()
	query := `SELECT user_id, email, password_hash, name, avatar, created_at FROM users WHERE user_id = $1`

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(userColumns).
			AddRow(userID, "test@example.com", "hash", "Test", "avatars/test.png", time.Now())

		mock.ExpectQuery(query).WithArgs(userID).WillReturnRows(rows)

		user, err := repo.GetUserByID(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, userID, user.UserID)
		assert.Equal(t, "Test", user.Name)
		assert.Equal(t, "avatars/test.png", user.Avatar)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID).WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByID(ctx, userID)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(userID).WillReturnError(errors.New("connection failed"))

		user, err := repo.GetUserByID(ctx, userID)

		assert.Nil(t, user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "failed to get user")
	})
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	repo, mock := newUserRepoMock(t)
	ctx := context.Background()
	query := `SELECT user_id, email, password_hash, name, avatar, created_at FROM users WHERE lower(email) = $1`

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(userColumns).
			AddRow(uuid.New().String(), "test@example.com", "hash", "Test", "", time.Now())

		mock.ExpectQuery(query).WithArgs("test@example.com").WillReturnRows(rows)

		user, err := repo.GetUserByEmail(ctx, "test@example.com")

		require.NoError(t, err)
		assert.Equal(t, "test@example.com", user.Email)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("matches regardless of case", func(t *testing.T) {
		rows := sqlmock.NewRows(userColumns).
			AddRow(uuid.New().String(), "test@example.com", "hash", "Test", "", time.Now())

		mock.ExpectQuery(query).WithArgs("test@example.com").WillReturnRows(rows)

		user, err := repo.GetUserByEmail(ctx, "Test@Example.com")

		require.NoError(t, err)
		assert.Equal(t, "test@example.com", user.Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("nobody@example.com").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetUserByEmail(ctx, "nobody@example.com")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
