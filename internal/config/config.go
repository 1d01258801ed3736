package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for remote vCard imports.
var UserAgent = "Go-Contacts/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Go Contacts"
	AppID          = "com.github.tartampluch.go-contacts"
	KeyringService = "com.github.tartampluch.go-contacts"

	// KeyringImportService holds remote import passwords, apart from the store secrets.
	KeyringImportService = KeyringService + ".import"
	LogFileName    = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagAddr         = "addr"
	FlagEnvFile      = "env"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescAddr     = "HTTP listen address (overrides " + EnvAddr + ")"
	FlagDescEnvFile  = "Path to an optional .env file"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvAddr        = "CONTACTS_ADDR"
	EnvStore       = "CONTACTS_STORE"
	EnvSQLitePath  = "CONTACTS_SQLITE_PATH"
	EnvRedisURL    = "CONTACTS_REDIS_URL"
	EnvRedisKey    = "CONTACTS_REDIS_KEY"
	EnvKeyringUser = "CONTACTS_KEYRING_USER"
	EnvPublicURL   = "CONTACTS_PUBLIC_URL"
	EnvLanguage    = "CONTACTS_LANGUAGE"
	EnvSessionTTL  = "CONTACTS_SESSION_TTL"
	EnvCORSOrigins = "CONTACTS_CORS_ORIGINS"
	EnvSeedFile    = "CONTACTS_SEED_FILE"
	EnvImportURL   = "CONTACTS_IMPORT_URL"
	EnvImportUser  = "CONTACTS_IMPORT_USER"

	DefaultEnvFile = ".env"
	ListSeparator  = ","
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"

	DefaultAddr       = "127.0.0.1:18081"
	DefaultStore      = StoreMemory
	DefaultSQLitePath = "./data/contacts.db"
	DefaultRedisURL   = "redis://127.0.0.1:6379/0"
	DefaultRedisKey   = "contacts"
	DefaultLanguage   = "en"
	DefaultSessionTTL = 30 * time.Minute
	DefaultCORSOrigin = "*"

	// SessionSweepInterval controls how often expired page sessions are evicted.
	SessionSweepInterval = time.Minute
)

// SupportedLanguages lists the UI languages shipped in the embedded locales (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Phone Numbers
// -----------------------------------------------------------------------------

const (
	// PhoneDigitCount is the only accepted length of a stripped phone number.
	PhoneDigitCount = 10

	// FormatPhone renders area code, exchange and line number as (XXX) XXX-XXXX.
	FormatPhone = "(%s) %s-%s"
)

// -----------------------------------------------------------------------------
// Standards: vCard
// -----------------------------------------------------------------------------

const (
	VCardBegin      = "BEGIN:VCARD"
	VCardEnd        = "END:VCARD"
	VCardVersion    = "3.0"
	VCardLineBreak  = "\r\n"
	VCardSeparator  = ":"
	VCardParamType  = ";TYPE="
	VCardNamePrefix = ";"
	VCardNameSuffix = ";;;"

	ExportFileName = "contacts.vcf"
	ExtVCF         = ".vcf"
	ExtVCard       = ".vcard"
)

// PickerProperties is the property list requested from a native contact picker.
var PickerProperties = []string{"name", "tel"}

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB
	MaxUploadSize       = 16 * 1024 * 1024
	MaxRedirects        = 10
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	CORSMaxAgeSeconds   = 300

	// QRCodeSize is the edge length in pixels of the generated QR code.
	QRCodeSize = 256
)

// -----------------------------------------------------------------------------
// Routes, Form Fields & Cookies
// -----------------------------------------------------------------------------

const (
	RouteRoot          = "/"
	RouteToggle        = "/toggle/{id}"
	RouteReload        = "/reload"
	RouteExport        = "/export"
	RouteExportOne     = "/contacts/{id}/vcard"
	RouteAdmin         = "/admin"
	RouteAdminSave     = "/admin/contacts"
	RouteAdminDelete   = "/admin/contacts/delete"
	RouteAdminImport   = "/admin/import"
	RouteAPI           = "/api"
	RouteAPIContacts   = "/contacts"
	RouteAPIToggle     = "/contacts/{id}/toggle"
	RouteAPIExport     = "/export"
	RouteAPIAdmin      = "/admin/contacts"
	RouteAPIAdminNamed = "/admin/contacts/{name}"
	RouteMetrics       = "/metrics"
	RouteHealth        = "/healthz"
	RouteQRCode        = "/qr.png"

	ParamID   = "id"
	ParamName = "name"

	FieldOriginalName = "original_name"
	FieldName         = "name"
	FieldPhone        = "phone"
	FieldConfirm      = "confirm"
	FieldImportFile   = "vcf"
	FieldImportURL    = "url"
	QueryQ            = "q"
	QueryEdit         = "edit"
	QueryNew          = "new"
	QueryDelete       = "delete"
	ConfirmYes        = "yes"

	SessionCookieName = "contacts_session"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderCacheControl       = "Cache-Control"
	HeaderETag               = "ETag"
	HeaderLocation           = "Location"
	HeaderXContentType       = "X-Content-Type-Options"
	HeaderUserAgent          = "User-Agent"
	HeaderAccept             = "Accept"
	HeaderAcceptLanguage     = "Accept-Language"
	HeaderIfNoneMatch        = "If-None-Match"
	HeaderForwardedProto     = "X-Forwarded-Proto"
	HeaderAuthorization      = "Authorization"

	MimeTextVCard    = "text/vcard"
	MimeVCardAccept  = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	MimeHTML         = "text/html; charset=utf-8"
	MimeJSON         = "application/json"
	MimePNG          = "image/png"
	MimeNoSniff      = "nosniff"
	CacheControlNone = "no-store"

	// FormatAttachment expects the file name.
	FormatAttachment = `attachment; filename="%s"`
	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrFetch            = "failed to fetch contacts"
	ErrNoSelection      = "no contacts selected"
	ErrInvalidPhone     = "phone number must be a valid 10-digit number"
	ErrInvalidName      = "contact name must not be empty"
	ErrMutation         = "contact mutation failed"
	ErrPartialRename    = "rename left the store inconsistent"
	ErrNotFound         = "contact not found"
	ErrStoreUnsupported = "configuration error: unsupported store backend"
	ErrStoreOpen        = "failed to open contact store"
	ErrStoreClose       = "failed to close contact store"
	ErrSQLiteOpen       = "failed to open sqlite database"
	ErrSQLiteMigrate    = "failed to apply sqlite migrations"
	ErrRedisURL         = "failed to parse redis URL"
	ErrRedisPing        = "redis ping failed"
	ErrDecodeDocument   = "failed to decode contact document"
	ErrEncodeDocument   = "failed to encode contact document"
	ErrTxBegin          = "failed to begin transaction"
	ErrTxCommit         = "failed to commit transaction"
	ErrSessionTTL       = "configuration error: invalid session TTL"
	ErrEnvFile          = "failed to load env file"
	ErrSourceEmpty      = "import error: no vCard source given"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrTooManyRedirects = "stopped after too many redirects"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrAddrRequired     = "server address is required"
	ErrWriteResp        = "failed to write response body"
	ErrRenderPage       = "failed to render page"
	ErrQRCode           = "failed to generate QR code"
	ErrSeed             = "failed to seed contact store"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTemplates        = "failed to parse embedded templates"
	ErrBadRequest       = "malformed request"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgStoreOpened    = "Contact store opened"
	MsgContactsLoaded = "Contacts loaded"
	MsgFetchFailed    = "Error fetching contacts"
	MsgSelectionEmpty = "Export attempted without selection"
	MsgExported       = "vCard export generated"
	MsgPickerFailed   = "Contact picker attempt failed"
	MsgPickerPanic    = "Contact picker attempt panicked"
	MsgSaved          = "Contact saved"
	MsgSaveFailed     = "Error saving contact"
	MsgDeleted        = "Contact deleted"
	MsgDeleteFailed   = "Error deleting contact"
	MsgRenamed        = "Contact renamed"
	MsgPartialRename  = "Rename failed after old record was removed"
	MsgInvalidPhone   = "Rejected invalid phone number"
	MsgImportStarted  = "vCard import started"
	MsgImportDone     = "vCard import finished"
	MsgImportFailed   = "vCard import failed"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedPhone   = "Skipping vCard without a valid phone number"
	MsgSkippedName    = "Skipping vCard without a name"
	MsgSeeded         = "Contact store seeded"
	MsgSeedSkipped    = "Seed skipped, store is not empty"
	MsgSessionNew     = "Page session created"
	MsgSessionsSwept  = "Expired page sessions evicted"
	MsgMigration      = "Applied sqlite migration"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgSecretFail     = "Secret retrieval failed (might be empty)"
	MsgCredsWithheld  = "Import target is not the configured source, sending no credentials"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgHealthFailed   = "Health check failed"
	MsgDownloading    = "vCards downloading"
	MsgDownloadStart  = "Initiating vCard download"
	MsgBadStatus      = "Server returned error status"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyTitlePublic     = "title_public"
	TKeyTitleAdmin      = "title_admin"
	TKeyBtnAddContacts  = "btn_add_to_contacts"
	TKeyBtnRefresh      = "btn_refresh"
	TKeyBtnSave         = "btn_save"
	TKeyBtnCancel       = "btn_cancel"
	TKeyBtnDelete       = "btn_delete"
	TKeyBtnEdit         = "btn_edit"
	TKeyBtnAdd          = "btn_add"
	TKeyBtnSearch       = "btn_search"
	TKeyBtnImport       = "btn_import"
	TKeyBtnConfirm      = "btn_confirm_delete"
	TKeyLblName         = "lbl_name"
	TKeyLblPhone        = "lbl_phone"
	TKeyLblSearch       = "lbl_search"
	TKeyLblImportFile   = "lbl_import_file"
	TKeyLblImportURL    = "lbl_import_url"
	TKeyLblEditContact  = "lbl_edit_contact"
	TKeyLblNewContact   = "lbl_new_contact"
	TKeyLblConfirmDel   = "lbl_confirm_delete"
	TKeyLblActions      = "lbl_actions"
	TKeyLblQRCode       = "lbl_qr_code"
	TKeyEmptyList       = "empty_list"
	TKeyEmptySearch     = "empty_search"
	TKeyNotifFetchErr   = "notif_fetch_error"
	TKeyNotifNoSel      = "notif_no_selection"
	TKeyNotifSaved      = "notif_saved"
	TKeyNotifDeleted    = "notif_deleted"
	TKeyNotifSaveErr    = "notif_save_error"
	TKeyNotifDeleteErr  = "notif_delete_error"
	TKeyNotifPartial    = "notif_partial_rename"
	TKeyNotifImportDone = "notif_import_done" // Requires Count
	TKeyNotifImportErr  = "notif_import_error"
	TKeyNotifNotFound   = "notif_not_found"
	TKeyErrPhone        = "err_phone_invalid"
	TKeyErrName         = "err_name_required"
)

// -----------------------------------------------------------------------------
// Notification Levels
// -----------------------------------------------------------------------------

const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace   = "contacts"
	MetricExports      = "exports_total"
	MetricExportCards  = "exported_cards_total"
	MetricEmptyExports = "empty_exports_total"
	MetricMutations    = "mutations_total"
	MetricStoreErrors  = "store_errors_total"
	MetricImported     = "imported_cards_total"
	MetricSessions     = "active_sessions"
	LabelOp            = "op"
	LabelResult        = "result"

	OpCreate = "create"
	OpUpdate = "update"
	OpRename = "rename"
	OpDelete = "delete"
	OpList   = "list"
	OpImport = "import"

	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultFailed  = "failed"
	ResultPartial = "partial"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyBackend   = "backend"
	LogKeyUser      = "user"
	LogKeyName      = "name"
	LogKeyOldName   = "old_name"
	LogKeyNewName   = "new_name"
	LogKeyID        = "id"
	LogKeyCount     = "count"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyTotal     = "total_cards"
	LogKeyImported  = "imported"
	LogKeySkipped   = "skipped"
	LogKeySession   = "session"
	LogKeySizeBytes = "size_bytes"
	LogKeyDuration  = "duration_ms"
	LogKeyOp        = "op"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain    = "main"
	CompConfig  = "config"
	CompEngine  = "engine"
	CompEditor  = "editor"
	CompExport  = "exporter"
	CompImport  = "importer"
	CompFetcher = "fetcher"
	CompStore   = "store"
	CompServer  = "server"
	CompSession = "session"
	CompI18n    = "i18n"
)
