package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Alias1177/TokenScout/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (p ConnectionParams) DSN() string {
	port := p.Port
	if port == "" {
		port = "5432"
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, port, p.User, p.Password, p.DBName, sslMode,
	)
}

// New creates a new database connection
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	db, err := sql.Open("postgres", params.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bot_users (
			user_id BIGINT PRIMARY KEY,
			chat_id BIGINT NOT NULL,
			username TEXT,
			first_seen TIMESTAMP NOT NULL,
			last_seen TIMESTAMP NOT NULL
		)
	`)
	return err
}

// UpsertUser records that a user talked to the bot.
// first_seen is kept from the first insert.
func (db *DB) UpsertUser(ctx context.Context, user models.BotUser) error {
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, `
		INSERT INTO bot_users (user_id, chat_id, username, first_seen, last_seen)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			username = EXCLUDED.username,
			last_seen = EXCLUDED.last_seen
	`, user.UserID, user.ChatID, nullString(user.Username), now)
	if err != nil {
		return fmt.Errorf("upserting user %d: %w", user.UserID, err)
	}
	return nil
}

// GetAllUsers returns every registered user
func (db *DB) GetAllUsers(ctx context.Context) ([]models.BotUser, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, chat_id, username, first_seen, last_seen
		FROM bot_users
		ORDER BY first_seen
	`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []models.BotUser
	for rows.Next() {
		var u models.BotUser
		var username sql.NullString
		if err := rows.Scan(&u.UserID, &u.ChatID, &username, &u.FirstSeen, &u.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		if username.Valid {
			u.Username = username.String
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Count returns the number of registered users
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bot_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
