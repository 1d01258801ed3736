package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// StoreSettings selects and parameterizes the contact store backend.
type StoreSettings struct {
	Backend       string // StoreMemory, StoreSQLite or StoreRedis
	SQLitePath    string
	RedisURL      string
	RedisKey      string // Hash key holding one field per contact
	RedisPassword string // Resolved from the OS keyring, never from the environment
}

// Settings holds the runtime configuration assembled from flags, the
// environment and the OS keyring.
type Settings struct {
	Addr        string
	Store       StoreSettings
	PublicURL   string // Empty means "derive from the incoming request"
	Language    string
	SessionTTL  time.Duration
	CORSOrigins []string
	SeedFile    string
	KeyringUser string

	// ImportURL is the only origin that receives ImportUser's keyring password.
	ImportURL  string
	ImportUser string
}

// Load reads the optional env file, then the process environment.
// A missing env file is not an error; a malformed one is.
func Load(envFile string) (Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("%s: %w", ErrEnvFile, err)
		}
	}

	ttl, err := time.ParseDuration(getEnv(EnvSessionTTL, DefaultSessionTTL.String()))
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSessionTTL, err)
	}
	if ttl <= 0 {
		return Settings{}, fmt.Errorf("%s: %s", ErrSessionTTL, ttl)
	}

	s := Settings{
		Addr: getEnv(EnvAddr, DefaultAddr),
		Store: StoreSettings{
			Backend:    strings.ToLower(getEnv(EnvStore, DefaultStore)),
			SQLitePath: getEnv(EnvSQLitePath, DefaultSQLitePath),
			RedisURL:   getEnv(EnvRedisURL, DefaultRedisURL),
			RedisKey:   getEnv(EnvRedisKey, DefaultRedisKey),
		},
		PublicURL:   strings.TrimRight(os.Getenv(EnvPublicURL), "/"),
		Language:    getEnv(EnvLanguage, DefaultLanguage),
		SessionTTL:  ttl,
		CORSOrigins: splitList(getEnv(EnvCORSOrigins, DefaultCORSOrigin)),
		SeedFile:    os.Getenv(EnvSeedFile),
		KeyringUser: os.Getenv(EnvKeyringUser),
		ImportURL:   strings.TrimSpace(os.Getenv(EnvImportURL)),
		ImportUser:  strings.TrimSpace(os.Getenv(EnvImportUser)),
	}

	switch s.Store.Backend {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return Settings{}, fmt.Errorf("%s: %q", ErrStoreUnsupported, s.Store.Backend)
	}

	if s.Store.Backend == StoreRedis && s.KeyringUser != "" {
		// A missing entry simply means an unauthenticated Redis.
		if p, err := LookupSecret(s.KeyringUser); err == nil {
			s.Store.RedisPassword = p
		} else {
			slog.Debug(MsgSecretFail,
				LogKeyComponent, CompConfig,
				LogKeyUser, s.KeyringUser,
				LogKeyError, err)
		}
	}

	return s, nil
}

// LookupSecret returns the store secret kept in the OS keyring for user.
func LookupSecret(user string) (string, error) {
	return keyring.Get(KeyringService, user)
}

// LookupImportSecret returns the remote import password kept in the OS keyring
// for user. It never reads the store secrets.
func LookupImportSecret(user string) (string, error) {
	return keyring.Get(KeyringImportService, user)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ListSeparator) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
