package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogPretty bool

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Chat connection policy.
	ServerURL            string
	ConnectTimeout       time.Duration
	SocketWriteTimeout   time.Duration
	JoinTimeout          time.Duration
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int

	// Credential selection: Token wins when set; otherwise, with a database
	// and CredentialUserID configured, the token is read from Postgres.
	Token            string
	CredentialUserID string

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Marketplace REST API base URL for room metadata and history.
	BackendBaseURL string

	// If true:
	// - /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("JOBCHAT_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("JOBCHAT_LOG_LEVEL", "info"),
		LogPretty: EnvBool("JOBCHAT_LOG_PRETTY", false),

		ReadHeaderTimeout: EnvDuration("JOBCHAT_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("JOBCHAT_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("JOBCHAT_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("JOBCHAT_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("JOBCHAT_HTTP_MAX_HEADER_BYTES", 1<<20),

		ServerURL:            EnvString("JOBCHAT_SERVER_URL", "ws://127.0.0.1:9000/ws"),
		ConnectTimeout:       EnvDuration("JOBCHAT_CONNECT_TIMEOUT", 10*time.Second),
		SocketWriteTimeout:   EnvDuration("JOBCHAT_SOCKET_WRITE_TIMEOUT", 5*time.Second),
		JoinTimeout:          EnvDuration("JOBCHAT_JOIN_TIMEOUT", 5*time.Second),
		ReconnectDelay:       EnvDuration("JOBCHAT_RECONNECT_DELAY", 3*time.Second),
		MaxReconnectAttempts: EnvInt("JOBCHAT_MAX_RECONNECT_ATTEMPTS", 5),

		Token:            EnvString("JOBCHAT_TOKEN", ""),
		CredentialUserID: EnvString("JOBCHAT_CREDENTIAL_USER_ID", ""),

		DatabaseURL: EnvString("JOBCHAT_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("JOBCHAT_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("JOBCHAT_DB_MIN_CONNS", 0),

		BackendBaseURL: EnvString("JOBCHAT_BACKEND_BASE_URL", "http://127.0.0.1:9001"),

		ReadinessRequireDB: EnvBool("JOBCHAT_READINESS_REQUIRE_DB", false),
	}
}
