package repository

import (
	"context"
	"testing"
	"time"

	"WaveFM/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newChatTestRepo(t *testing.T) (ChatRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewGormChatRepository(gdb), mock
}

func TestCreateMessageSetsTimestamp(t *testing.T) {
	req := require.New(t)
	repo, mock := newChatTestRepo(t)

	mock.ExpectExec("INSERT INTO `chat_messages`").
		WithArgs("alice", "hello room", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	msg := &model.ChatMessage{Username: "alice", Message: "hello room"}
	req.NoError(repo.CreateMessage(context.Background(), msg))
	req.False(msg.CreatedAt.IsZero())
	req.NoError(mock.ExpectationsWereMet())
}

func TestGetRecentMessagesChronologicalOrder(t *testing.T) {
	req := require.New(t)
	repo, mock := newChatTestRepo(t)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "username", "message", "created_at"}).
		AddRow(int64(3), "clara", "third", at.Add(2*time.Minute)).
		AddRow(int64(2), "bob", "second", at.Add(time.Minute)).
		AddRow(int64(1), "alice", "first", at)

	mock.ExpectQuery("SELECT \\* FROM `chat_messages` ORDER BY created_at DESC,id DESC").
		WithArgs(5).
		WillReturnRows(rows)

	messages, err := repo.GetRecentMessages(context.Background(), 5, nil)
	req.NoError(err)
	req.Len(messages, 3)
	// Newest-first from the store, oldest-first to the caller.
	req.Equal("first", messages[0].Message)
	req.Equal("third", messages[2].Message)
	req.NoError(mock.ExpectationsWereMet())
}

func TestGetRecentMessagesSince(t *testing.T) {
	req := require.New(t)
	repo, mock := newChatTestRepo(t)

	since := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT \\* FROM `chat_messages` WHERE created_at > \\?").
		WithArgs(since, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "message", "created_at"}))

	messages, err := repo.GetRecentMessages(context.Background(), 5, &since)
	req.NoError(err)
	req.Empty(messages)
	req.NoError(mock.ExpectationsWereMet())
}

func TestPruneMessagesDeletesBeyondCutoff(t *testing.T) {
	req := require.New(t)
	repo, mock := newChatTestRepo(t)

	cutoff := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT `created_at` FROM `chat_messages` ORDER BY created_at DESC").
		WithArgs(1, 99).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(cutoff))
	mock.ExpectExec("DELETE FROM `chat_messages` WHERE created_at < \\?").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 5))

	pruned, err := repo.PruneMessages(context.Background(), 100)
	req.NoError(err)
	req.EqualValues(5, pruned)
	req.NoError(mock.ExpectationsWereMet())
}

func TestPruneMessagesUnderLimitIsNoop(t *testing.T) {
	req := require.New(t)
	repo, mock := newChatTestRepo(t)

	// Fewer than 100 rows: the offset query finds no cutoff, nothing is deleted.
	mock.ExpectQuery("SELECT `created_at` FROM `chat_messages` ORDER BY created_at DESC").
		WithArgs(1, 99).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	pruned, err := repo.PruneMessages(context.Background(), 100)
	req.NoError(err)
	req.Zero(pruned)
	req.NoError(mock.ExpectationsWereMet())
}

func TestCountMessages(t *testing.T) {
	req := require.New(t)
	repo, mock := newChatTestRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `chat_messages`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(int64(42)))

	count, err := repo.CountMessages(context.Background())
	req.NoError(err)
	req.EqualValues(42, count)
	req.NoError(mock.ExpectationsWereMet())
}
