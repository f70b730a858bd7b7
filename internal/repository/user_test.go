package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"postboard/internal/cache"
	"postboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedName  string
		expectedError bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "name", "login"}).
					AddRow(1, "Alice", "alice")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedName: "Alice",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, "NOT_FOUND", appErr.Code)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedName, user.Name)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByLogin(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "login", "token"}).
			AddRow(1, "Alice", "alice", "tok-1")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE login = $1 ORDER BY "users"."id" LIMIT $2`)).
			WithArgs("alice", 1).
			WillReturnRows(rows)

		user, err := repo.GetByLogin(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", user.Token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown login maps to unauthorized", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE login = $1 ORDER BY "users"."id" LIMIT $2`)).
			WithArgs("ghost", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByLogin(ctx, "ghost")
		assert.Nil(t, user)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByToken(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "token"}).
			AddRow(1, "Alice", "tok-1")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE token = $1 ORDER BY "users"."id" LIMIT $2`)).
			WithArgs("tok-1", 1).
			WillReturnRows(rows)

		user, err := repo.GetByToken(ctx, "tok-1")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("Unknown token returns nil without error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE token = $1 ORDER BY "users"."id" LIMIT $2`)).
			WithArgs("nope", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByToken(ctx, "nope")
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("Database error is surfaced", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE token = $1`)).
			WithArgs("tok-1", 1).
			WillReturnError(errors.New("connection timeout"))

		user, err := repo.GetByToken(ctx, "tok-1")
		assert.Error(t, err)
		assert.Nil(t, user)
	})
}

func TestUserRepository_Create_Conflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "idx_users_name_login"`))
	mock.ExpectRollback()

	err := repo.Create(ctx, &models.User{Name: "Alice", Login: "alice", Password: "x", Token: "t"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteWithPosts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Deletes posts then user in one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE author_id = $1`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(8))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE author_id = $1`)).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE "users"."id" = $1`)).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteWithPosts(ctx, 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Evicts cached user and post entries after commit", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cache.InitRedis(mr.Addr())
		t.Cleanup(func() { cache.InitRedis("127.0.0.1:1") })

		require.NoError(t, cache.SetJSON(ctx, cache.UserKey(1), models.User{Name: "Alice"}, cache.UserTTL))
		require.NoError(t, cache.SetJSON(ctx, cache.PostKey(7), models.Post{Title: "First"}, cache.PostTTL))
		require.NoError(t, cache.SetJSON(ctx, cache.PostKey(8), models.Post{Title: "Second"}, cache.PostTTL))

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE author_id = $1`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7).AddRow(8))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE author_id = $1`)).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE "users"."id" = $1`)).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.DeleteWithPosts(ctx, 1))
		assert.False(t, mr.Exists(cache.UserKey(1)))
		assert.False(t, mr.Exists(cache.PostKey(7)))
		assert.False(t, mr.Exists(cache.PostKey(8)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown user rolls back with not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "posts" WHERE author_id = $1`)).
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE author_id = $1`)).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "users" WHERE "users"."id" = $1`)).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.DeleteWithPosts(ctx, 99)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
