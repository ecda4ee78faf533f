package repository

import (
	"context"
	"regexp"
	"testing"

	"campus/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListBySchools_EmptySetSkipsQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	posts, err := repo.ListBySchools(context.Background(), nil, 50)
	require.NoError(t, err)
	assert.Nil(t, posts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_UpdateStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	t.Run("hides existing post", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "posts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateStatus(context.Background(), 3, models.ContentStatusHidden)
		require.NoError(t, err)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "posts" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.UpdateStatus(context.Background(), 99, models.ContentStatusHidden)
		require.Error(t, err)
		appErr, ok := err.(*models.AppError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Like_IsIdempotent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	// the second like hits ON CONFLICT DO NOTHING and affects zero rows
	for _, affected := range []int64{1, 0} {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (user_id, post_id, created_at)`)).
			WithArgs(4, 7).
			WillReturnResult(sqlmock.NewResult(0, affected))

		err := repo.Like(context.Background(), 4, 7)
		require.NoError(t, err)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ClampFetch(t *testing.T) {
	assert.Equal(t, maxFetch, clampFetch(0))
	assert.Equal(t, maxFetch, clampFetch(-1))
	assert.Equal(t, maxFetch, clampFetch(maxFetch+1))
	assert.Equal(t, 50, clampFetch(50))
}
