package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var sectionColumns = []string{"id", "created_at", "updated_at", "page_id", "order", "type_id", "properties"}

func newMockRepository(t *testing.T) (SectionRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewSectionRepository(db), mock
}

func TestSectionRepositoryListByPage(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "section_instances" WHERE page_id = \$1 ORDER BY`).
		WillReturnRows(sqlmock.NewRows(sectionColumns).
			AddRow("a", now, now, 7, 0, "hero-centered", []byte(`{"title":{"text":"Hi"}}`)).
			AddRow("b", now, now, 7, 1, "paragraph", []byte(`{"text":"Body"}`)))

	sections, err := repo.ListByPage(7)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "a", sections[0].ID)
	assert.Equal(t, "hero-centered", sections[0].TypeID)
	assert.Equal(t, map[string]interface{}{"text": "Hi"}, sections[0].Properties["title"])
	assert.Equal(t, "Body", sections[1].Properties["text"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "section_instances" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(sectionColumns))

	_, err := repo.GetByID("missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryNextOrder(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\("order"\) \+ 1, 0\) FROM "section_instances" WHERE page_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))

	next, err := repo.NextOrder(7)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "section_instances" WHERE id = \$1`).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Delete("a"))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "section_instances"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	assert.True(t, errors.Is(repo.Delete("gone"), gorm.ErrRecordNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryUpdateOrders(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "section_instances" SET "order"=\$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "section_instances" SET "order"=\$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateOrders(7, []string{"b", "a"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryUpdateOrdersRollsBackForeignSection(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "section_instances" SET "order"=\$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "section_instances" SET "order"=\$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateOrders(7, []string{"a", "other-page"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
