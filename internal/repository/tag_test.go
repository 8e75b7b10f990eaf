package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/models"
)

func TestTagRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "tags" WHERE LOWER(name) = LOWER($1) AND "tags"."deleted_at" IS NULL`)).
		WithArgs("golang").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "tags"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	tag := &models.Tag{Name: "golang"}
	err := repo.Create(ctx, tag)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), tag.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Uniqueness is case-insensitive: "Golang" is rejected when "golang" exists,
// and nothing reaches the insert.
func TestTagRepository_Create_DuplicateName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "tags" WHERE LOWER(name) = LOWER($1) AND "tags"."deleted_at" IS NULL`)).
		WithArgs("Golang").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Create(ctx, &models.Tag{Name: "Golang"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Equal(t, []string{"A tag with this name already exists."}, appErr.Fields["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_Update_DuplicateName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "tags" WHERE LOWER(name) = LOWER($1) AND id <> $2 AND "tags"."deleted_at" IS NULL`)).
		WithArgs("Rust", 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Update(ctx, &models.Tag{ID: 2, Name: "Rust"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, []string{"A tag with this name already exists."}, appErr.Fields["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A tag may keep its own name on update; only other rows count.
func TestTagRepository_Update_SameName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "tags" WHERE LOWER(name) = LOWER($1) AND id <> $2 AND "tags"."deleted_at" IS NULL`)).
		WithArgs("golang", 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tags" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(ctx, &models.Tag{ID: 1, Name: "golang"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_Delete_DetachesPosts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "post_id" FROM "post_tags" WHERE tag_id = $1`)).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"post_id"}).AddRow(10).AddRow(11))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM post_tags WHERE tag_id = $1`)).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tags" SET "deleted_at"=`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, 4)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDuplicateNameError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"index name", errors.New(`ERROR: duplicate key value violates unique constraint "idx_tags_name_lower"`), true},
		{"sqlite unique", errors.New("UNIQUE constraint failed: tags.name"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateNameError(tt.err))
		})
	}
}
