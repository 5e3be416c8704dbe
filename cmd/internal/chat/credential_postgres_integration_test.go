package chat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration tests are enabled when JOBCHAT_TEST_DATABASE_URL is set.
// This keeps local "go test ./..." fast & deterministic without requiring Postgres.

func TestPostgresCredentialSource_TokenLifecycle(t *testing.T) {
	t.Parallel()

	pool := mustOpenTestPool(t)
	defer pool.Close()

	schema := mustCreateTestSchema(t, pool)
	t.Cleanup(func() { mustDropSchema(t, pool, schema) })

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	table := pgx.Identifier{schema, "chat_credentials"}.Sanitize()
	if _, err := pool.Exec(ctx, `CREATE TABLE `+table+` (
		user_id      TEXT PRIMARY KEY,
		bearer_token TEXT NOT NULL,
		revoked_at   TIMESTAMPTZ
	)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	userID := "it-user-" + randomHex(8)
	src, err := NewPostgresCredentialSource(pool, userID, WithCredentialSchema(schema))
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	// No row yet: pre-login, not an error.
	tok, err := src.Token(ctx)
	if err != nil {
		t.Fatalf("token (no row): %v", err)
	}
	if tok != "" {
		t.Fatalf("token (no row): got %q, want empty", tok)
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO `+table+` (user_id, bearer_token) VALUES ($1, $2)`,
		userID, "  bearer-abc  "); err != nil {
		t.Fatalf("insert credential: %v", err)
	}

	tok, err = src.Token(ctx)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if tok != "bearer-abc" {
		t.Fatalf("token: got %q, want trimmed bearer-abc", tok)
	}

	// A revoked credential reads as pre-login again.
	if _, err := pool.Exec(ctx,
		`UPDATE `+table+` SET revoked_at = now() WHERE user_id = $1`, userID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	tok, err = src.Token(ctx)
	if err != nil {
		t.Fatalf("token (revoked): %v", err)
	}
	if tok != "" {
		t.Fatalf("token (revoked): got %q, want empty", tok)
	}
}

func mustOpenTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	raw := strings.TrimSpace(os.Getenv("JOBCHAT_TEST_DATABASE_URL"))
	if raw == "" {
		t.Skip("integration test skipped: JOBCHAT_TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := pgxpool.ParseConfig(raw)
	if err != nil {
		t.Fatalf("parse JOBCHAT_TEST_DATABASE_URL: %v", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer pingCancel()

	c, err := pool.Acquire(pingCtx)
	if err != nil {
		pool.Close()
		t.Fatalf("acquire: %v", err)
	}
	c.Release()

	return pool
}

func mustCreateTestSchema(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	schema := "jobchat_it_" + randomHex(8)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, `CREATE SCHEMA `+pgx.Identifier{schema}.Sanitize()); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return schema
}

func mustDropSchema(t *testing.T, pool *pgxpool.Pool, schema string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = pool.Exec(ctx, `DROP SCHEMA IF EXISTS `+pgx.Identifier{schema}.Sanitize()+` CASCADE`)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
