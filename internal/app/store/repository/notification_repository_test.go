package repository

import (
	"context"
	"database/sql"
	"testing"

	"homenest/internal/app/store/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type NotificationRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  NotificationRepository
	sqlDB *sql.DB
}

func TestNotificationRepositorySuite(t *testing.T) {
	suite.Run(t, new(NotificationRepositoryTestSuite))
}

func (s *NotificationRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	s.repo = NewNotificationRepository(s.db)
}

func (s *NotificationRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// UPDATE ограничен аудиторией и владельцем, а не одним только ID
func (s *NotificationRepositoryTestSuite) TestMarkRead_UserScopedToOwnRows() {
	id := uuid.New()
	userID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`UPDATE "notifications" SET "is_read"=\$1 WHERE id = \$2 AND \(audience = \$3 AND user_id = \$4\)`).
		WithArgs(true, id, entity.AudienceUser, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.MarkRead(context.Background(), id, userID, entity.RoleUser)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

// Чужое уведомление не попадает под условие и выглядит несуществующим
func (s *NotificationRepositoryTestSuite) TestMarkRead_StrangerGetsNotFound() {
	id := uuid.New()
	stranger := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`UPDATE "notifications" SET "is_read"=\$1 WHERE id = \$2 AND \(audience = \$3 AND user_id = \$4\)`).
		WithArgs(true, id, entity.AudienceUser, stranger).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	err := s.repo.MarkRead(context.Background(), id, stranger, entity.RoleUser)

	s.ErrorIs(err, ErrNotificationNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// Администратор дополнительно видит админ-поток
func (s *NotificationRepositoryTestSuite) TestMarkRead_AdminCoversAdminFeed() {
	id := uuid.New()
	adminID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`UPDATE "notifications" SET "is_read"=\$1 WHERE id = \$2 AND \(audience = \$3 OR user_id = \$4\)`).
		WithArgs(true, id, entity.AudienceAdmin, adminID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	err := s.repo.MarkRead(context.Background(), id, adminID, entity.RoleAdmin)

	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}
