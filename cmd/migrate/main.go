package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [up|drop|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("All tables created successfully")

	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("All tables dropped successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id         TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_id    TEXT,
			body       TEXT NOT NULL DEFAULT '',
			escalated  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_created ON chat_messages (created_at)`,

		`CREATE TABLE IF NOT EXISTS chat_sessions (
			session_id        TEXT PRIMARY KEY,
			user_id           TEXT,
			is_escalated      BOOLEAN NOT NULL DEFAULT FALSE,
			escalation_status TEXT NOT NULL DEFAULT '',
			escalated_at      TIMESTAMPTZ,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions (user_id)`,

		`CREATE TABLE IF NOT EXISTS escalations (
			id           TEXT PRIMARY KEY,
			session_id   TEXT NOT NULL UNIQUE,
			user_id      TEXT NOT NULL,
			user_email   TEXT NOT NULL DEFAULT '',
			user_name    TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'pending',
			escalated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_escalations_status ON escalations (status, escalated_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec failed: %w", err)
		}
	}
	return nil
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	for _, table := range []string{"escalations", "chat_sessions", "chat_messages"} {
		if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s failed: %w", table, err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`INSERT INTO chat_messages (id, session_id, user_id, body)
		 VALUES
			('m-1', 'seed-session-1', 'user-1', 'Hello, my order never arrived'),
			('m-2', 'seed-session-1', '', 'Sorry to hear that, let me check'),
			('m-3', 'seed-session-2', 'user-2', 'How do I reset my password?')
		 ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO chat_sessions (session_id, user_id)
		 VALUES
			('seed-session-1', 'user-1'),
			('seed-session-2', 'user-2')
		 ON CONFLICT (session_id) DO NOTHING`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
	}
	return nil
}
