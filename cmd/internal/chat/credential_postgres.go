package chat

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var pgIdentRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresCredentialSource reads the bearer token for one platform user from
// <schema>.chat_credentials. Headless deployments (agents, integrations)
// keep their session tokens in the platform database rather than a device
// keychain.
type PostgresCredentialSource struct {
	pool   *pgxpool.Pool
	schema string
	userID string
}

// CredentialOption configures PostgresCredentialSource behavior.
type CredentialOption func(*PostgresCredentialSource) error

// WithCredentialSchema sets the DB schema used by the source (default: "jobchat").
func WithCredentialSchema(schema string) CredentialOption {
	return func(s *PostgresCredentialSource) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return errors.New("chat: empty schema")
		}
		if !pgIdentRE.MatchString(schema) {
			return errors.New("chat: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresCredentialSource constructs a credential source backed by PostgreSQL.
func NewPostgresCredentialSource(pool *pgxpool.Pool, userID string, opts ...CredentialOption) (*PostgresCredentialSource, error) {
	src := &PostgresCredentialSource{
		pool:   pool,
		schema: "jobchat",
		userID: strings.TrimSpace(userID),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(src); err != nil {
			return nil, err
		}
	}
	if src.pool == nil {
		return nil, errors.New("chat: nil pool")
	}
	if src.userID == "" {
		return nil, errors.New("chat: empty user id")
	}
	return src, nil
}

// Token returns the stored bearer token, or "" when the user has no active
// credential (pre-login state, not an error).
func (s *PostgresCredentialSource) Token(ctx context.Context) (string, error) {
	if s == nil || s.pool == nil {
		return "", errors.New("chat: nil credential source")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	table := pgx.Identifier{s.schema, "chat_credentials"}.Sanitize()

	var token string
	err := s.pool.QueryRow(ctx,
		`SELECT bearer_token FROM `+table+` WHERE user_id = $1 AND revoked_at IS NULL`,
		s.userID,
	).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}
