package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Alias1177/TokenScout/models"
)

// setupTestDB starts a PostgreSQL container and connects to it through New,
// so the schema is created the same way the bot does it.
// Returns a cleanup function that must be called after the test.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	host, err := container.Host(ctx)
	require.NoError(t, err, "failed to get container host")
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err, "failed to get mapped port")

	db, err := New(ctx, ConnectionParams{
		Host:     host,
		Port:     port.Port(),
		User:     "test",
		Password: "test",
		DBName:   "testdb",
	})
	require.NoError(t, err, "failed to connect")

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func findUser(t *testing.T, users []models.BotUser, id int64) models.BotUser {
	t.Helper()
	for _, u := range users {
		if u.UserID == id {
			return u
		}
	}
	t.Fatalf("user %d not found", id)
	return models.BotUser{}
}

func TestDB_UserRegistry(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, db.UpsertUser(ctx, models.BotUser{UserID: 1, ChatID: 100, Username: "alice"}))
	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	first := findUser(t, users, 1)
	assert.Equal(t, "alice", first.Username)
	assert.True(t, first.FirstSeen.Equal(first.LastSeen))

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, db.UpsertUser(ctx, models.BotUser{UserID: 2, ChatID: 200}))

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, db.UpsertUser(ctx, models.BotUser{UserID: 1, ChatID: 101, Username: "alice_new"}))

	users, err = db.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	t.Run("upsert keeps first_seen", func(t *testing.T) {
		again := findUser(t, users, 1)
		assert.True(t, again.FirstSeen.Equal(first.FirstSeen), "first_seen %v changed to %v", first.FirstSeen, again.FirstSeen)
		assert.True(t, again.LastSeen.After(again.FirstSeen))
		assert.Equal(t, "alice_new", again.Username)
		assert.Equal(t, int64(101), again.ChatID)
	})

	t.Run("empty username reads back empty", func(t *testing.T) {
		assert.Empty(t, findUser(t, users, 2).Username)
	})

	t.Run("ordered by first_seen", func(t *testing.T) {
		assert.Equal(t, int64(1), users[0].UserID)
		assert.Equal(t, int64(2), users[1].UserID)
	})

	t.Run("count matches listing", func(t *testing.T) {
		count, err := db.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(users), count)
	})
}

func TestNew_CreatesTablesIdempotently(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, createTables(context.Background(), db.DB))
}
