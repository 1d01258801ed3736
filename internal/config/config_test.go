package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/zalando/go-keyring"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"VCardVersion", config.VCardVersion},
		{"ExportFileName", config.ExportFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestVCardContract pins the byte-level pieces of the export format.
func TestVCardContract(t *testing.T) {
	assert.Equal(t, "BEGIN:VCARD", config.VCardBegin)
	assert.Equal(t, "END:VCARD", config.VCardEnd)
	assert.Equal(t, "\r\n", config.VCardLineBreak)
	assert.Equal(t, "text/vcard", config.MimeTextVCard)
	assert.Equal(t, "contacts.vcf", config.ExportFileName)
	assert.Equal(t, []string{"name", "tel"}, config.PickerProperties)
}

// TestUserAgent_Format ensures the UA string follows the standard format.
func TestUserAgent_Format(t *testing.T) {
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-Contacts/"), "UserAgent must start with AppName/")
}

// TestTimeoutsAndLimits ensures that operational constraints are reasonable.
func TestTimeoutsAndLimits(t *testing.T) {
	assert.Greater(t, config.HTTPTimeout, 0*time.Second)
	assert.LessOrEqual(t, config.HTTPTimeout, 2*time.Minute)
	assert.Greater(t, config.ShutdownTimeout, 0*time.Second)
	assert.Greater(t, config.MaxHTTPResponseSize, 0)
	assert.Greater(t, config.DefaultSessionTTL, config.SessionSweepInterval)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvAddr, config.EnvStore, config.EnvSQLitePath, config.EnvRedisURL,
		config.EnvRedisKey, config.EnvKeyringUser, config.EnvPublicURL, config.EnvLanguage,
		config.EnvSessionTTL, config.EnvCORSOrigins, config.EnvSeedFile,
		config.EnvImportURL, config.EnvImportUser,
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err, "A missing env file must not be fatal")

	assert.Equal(t, config.DefaultAddr, s.Addr)
	assert.Equal(t, config.StoreMemory, s.Store.Backend)
	assert.Equal(t, config.DefaultRedisKey, s.Store.RedisKey)
	assert.Equal(t, config.DefaultSessionTTL, s.SessionTTL)
	assert.Equal(t, []string{config.DefaultCORSOrigin}, s.CORSOrigins)
	assert.Empty(t, s.PublicURL)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, even to "".
	for _, k := range []string{config.EnvStore, config.EnvSQLitePath, config.EnvPublicURL, config.EnvCORSOrigins} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range []string{config.EnvStore, config.EnvSQLitePath, config.EnvPublicURL, config.EnvCORSOrigins} {
			_ = os.Unsetenv(k)
		}
	})

	path := filepath.Join(t.TempDir(), ".env")
	content := "CONTACTS_STORE=SQLite\n" +
		"CONTACTS_SQLITE_PATH=/tmp/c.db\n" +
		"CONTACTS_PUBLIC_URL=https://kiki.example/\n" +
		"CONTACTS_CORS_ORIGINS=https://a.example, https://b.example\n"
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))

	s, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.StoreSQLite, s.Store.Backend, "Backend must be case-insensitive")
	assert.Equal(t, "/tmp/c.db", s.Store.SQLitePath)
	assert.Equal(t, "https://kiki.example", s.PublicURL, "Trailing slash is trimmed")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, s.CORSOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"UnknownBackend", config.EnvStore, "firestore", config.ErrStoreUnsupported},
		{"BadTTL", config.EnvSessionTTL, "soon", config.ErrSessionTTL},
		{"NegativeTTL", config.EnvSessionTTL, "-5m", config.ErrSessionTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RedisPasswordFromKeyring(t *testing.T) {
	keyring.MockInit()
	clearEnv(t)
	t.Setenv(config.EnvStore, config.StoreRedis)
	t.Setenv(config.EnvKeyringUser, "kiki")
	require.NoError(t, keyring.Set(config.KeyringService, "kiki", "s3cret"))

	s, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", s.Store.RedisPassword)
}

func TestLoad_KeyringMissIsNotFatal(t *testing.T) {
	keyring.MockInit()
	clearEnv(t)
	t.Setenv(config.EnvStore, config.StoreRedis)
	t.Setenv(config.EnvKeyringUser, "nobody")

	s, err := config.Load("")
	require.NoError(t, err)
	assert.Empty(t, s.Store.RedisPassword)
}

func TestLoad_ImportSource(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvImportURL, " https://dav.example/addressbook.vcf ")
	t.Setenv(config.EnvImportUser, "kiki")

	s, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://dav.example/addressbook.vcf", s.ImportURL)
	assert.Equal(t, "kiki", s.ImportUser)
}

func TestLookupImportSecret_SeparateService(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(config.KeyringService, "redis", "store-secret"))
	require.NoError(t, keyring.Set(config.KeyringImportService, "dav", "import-secret"))

	_, err := config.LookupImportSecret("redis")
	assert.ErrorIs(t, err, keyring.ErrNotFound, "Store secrets are not reachable as import secrets")

	pass, err := config.LookupImportSecret("dav")
	require.NoError(t, err)
	assert.Equal(t, "import-secret", pass)

	_, err = config.LookupSecret("dav")
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}
