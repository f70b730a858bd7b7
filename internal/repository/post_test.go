package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"postboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "title", "text", "author_id", "created_at"}).
			AddRow(1, "Hello", "First post", 2, time.Now())
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE "posts"."id" = $1 ORDER BY "posts"."id" LIMIT $2`)).
			WithArgs(1, 1).
			WillReturnRows(rows)

		post, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Hello", post.Title)
		assert.Equal(t, uint(2), post.AuthorID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE "posts"."id" = $1 ORDER BY "posts"."id" LIMIT $2`)).
			WithArgs(99, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		post, err := repo.GetByID(ctx, 99)
		assert.Nil(t, post)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestPostRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Missing author maps to not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
			WillReturnError(errors.New(`insert or update on table "posts" violates foreign key constraint "fk_users_posts"`))
		mock.ExpectRollback()

		err := repo.Create(ctx, &models.Post{Title: "x", Text: "y", AuthorID: 42})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Defaults to created_at descending", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "title", "created_at"}).
			AddRow(2, "Newest", time.Now()).
			AddRow(1, "Oldest", time.Now().Add(-time.Hour))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" ORDER BY created_at DESC`)).
			WillReturnRows(rows)

		posts, err := repo.List(ctx, ListFilter{})
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "Newest", posts[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Applies author scope and limit", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "title", "author_id"}).
			AddRow(3, "Mine", 7)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE author_id = $1 ORDER BY title DESC LIMIT $2`)).
			WithArgs(7, 5).
			WillReturnRows(rows)

		posts, err := repo.List(ctx, ListFilter{SortBy: "title", Limit: 5, AuthorID: 7})
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, uint(7), posts[0].AuthorID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE "posts"."id" = $1`)).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Delete(ctx, 1))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown post", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE "posts"."id" = $1`)).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Delete(ctx, 99)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}
