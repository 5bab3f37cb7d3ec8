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

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Timeline/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Timeline"
	AppID             = "com.github.tartampluch.go-timeline"
	KeyringService    = "com.github.tartampluch.go-timeline"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
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

	// FilePermPublic represents -rw-r--r--, used for exported documents.
	FilePermPublic fs.FileMode = 0644

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion   = "version"
	FlagDebug     = "debug"
	FlagConfig    = "config"
	FlagSource    = "source"
	FlagDelimiter = "delimiter"
	FlagPort      = "port"
	FlagLang      = "lang"
	FlagOnce      = "once"
	FlagOut       = "out"
	FlagICS       = "ics"

	FlagDescVersion   = "Show application version and exit"
	FlagDescDebug     = "Enable debug logging to stdout"
	FlagDescConfig    = "Path to a YAML settings file"
	FlagDescSource    = "URL or local path of the delimited source file"
	FlagDescDelimiter = "Column delimiter: comma, semicolon, tab or pipe"
	FlagDescPort      = "Port of the local HTTP server"
	FlagDescLang      = "Language used for messages (en, fr)"
	FlagDescOnce      = "Convert once, write the document and exit"
	FlagDescOut       = "Output file for -once (default: stdout)"
	FlagDescICS       = "With -once, write the iCalendar export instead of JSON"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// SupportedLanguages defines the list of available message languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyTitleHeadline       = "title_headline"
	TKeyErrNoData           = "err_no_data"
	TKeyErrNoValidEvents    = "err_no_valid_events"
	TKeyErrNoCandidates     = "err_no_candidate_rows"
	TKeyErrNoSurvivors      = "err_no_surviving_events"
	TKeyErrConversion       = "err_conversion"        // Requires Detail
	TKeyErrSchema           = "err_schema"            // Requires Detail
	TKeyErrSource           = "err_source"            // Requires Detail
	TKeyErrUnknown          = "err_unknown"           // Requires Detail
	TKeySyncSummary         = "sync_summary"          // Requires Count
	TKeySyncSummaryRejected = "sync_summary_rejected" // Requires Count, Rejected
)

// Error codes returned by the conversion endpoint.
const (
	ErrCodeNoData            = "no_data"
	ErrCodeNoValidEvents     = "no_valid_events"
	ErrCodeNoCandidateRows   = "no_candidate_rows"
	ErrCodeNoSurvivingEvents = "no_surviving_events"
	ErrCodeConversion        = "conversion_error"
	ErrCodeSchema            = "schema_invalid"
	ErrCodeSource            = "source_error"
	ErrCodeUnknown           = "unknown"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18081"
	DefaultRefreshMin = 15
	DefaultLanguage   = "en"
	DefaultDelimiter  = "comma"
	DisabledInterval  = 0

	// DefaultTitleHeadline is used when neither settings nor locales provide one.
	DefaultTitleHeadline = "Timeline"

	// Generated identifiers
	EventIDPrefix     = "event"
	FormatEventID     = "%s-%d-%s"
	RandomTokenLength = 7
	RandomTokenBase   = 36

	// AutolinkDisabled is the only Autolink cell value that has an effect.
	AutolinkDisabled = "FALSE"

	// TimeSeparator splits the Time / End Time cells.
	TimeSeparator = ":"
)

// Date part ranges. Day is checked independently of month and year.
const (
	MinMonth  = 1
	MaxMonth  = 12
	MinDay    = 1
	MaxDay    = 31
	MinHour   = 0
	MaxHour   = 23
	MinMinute = 0
	MaxMinute = 59
	MinSecond = 0
	MaxSecond = 59
)

// -----------------------------------------------------------------------------
// Source Columns
// -----------------------------------------------------------------------------

const (
	ColYear            = "Year"
	ColMonth           = "Month"
	ColDay             = "Day"
	ColTime            = "Time"
	ColEndYear         = "End Year"
	ColEndMonth        = "End Month"
	ColEndDay          = "End Day"
	ColEndTime         = "End Time"
	ColDisplayDate     = "Display Date"
	ColHeadline        = "Headline"
	ColText            = "Text"
	ColMedia           = "Media"
	ColMediaCredit     = "Media Credit"
	ColMediaCaption    = "Media Caption"
	ColMediaThumbnail  = "Thumbnail"
	ColMediaAlt        = "Alt"
	ColMediaTitle      = "Title"
	ColMediaLink       = "Link"
	ColMediaLinkTarget = "Link Target"
	ColGroup           = "Group"
	ColBackground      = "Background"
	ColBackgroundColor = "Background Color"
	ColUniqueID        = "Unique ID"
	ColAutolink        = "Autolink"

	// Title block columns, read from the first record only.
	ColTitleMedia           = "Title Media"
	ColTitleCaption         = "Title Caption"
	ColTitleCredit          = "Title Credit"
	ColTitleThumbnail       = "Title Thumbnail"
	ColTitleAlt             = "Title Alt"
	ColTitleTitle           = "Title Title"
	ColTitleLink            = "Title Link"
	ColTitleLinkTarget      = "Title Link Target"
	ColTitleBackground      = "Title Background"
	ColTitleBackgroundColor = "Title Background Color"
)

// -----------------------------------------------------------------------------
// Delimiters
// -----------------------------------------------------------------------------

const (
	DelimiterComma     = "comma"
	DelimiterSemicolon = "semicolon"
	DelimiterTab       = "tab"
	DelimiterPipe      = "pipe"
)

// Delimiters maps the named delimiter options to their runes.
var Delimiters = map[string]rune{
	DelimiterComma:     ',',
	DelimiterSemicolon: ';',
	DelimiterTab:       '\t',
	DelimiterPipe:      '|',
}

// UTF8BOM is stripped from the first header cell.
const UTF8BOM = "\uFEFF"

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Timeline//Engine//EN"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gotimeline"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropURL         = "URL"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	FormatICalUID = "%s@%s"

	// ICal years outside this range cannot be encoded as DATE values.
	ICalMinYear = 1
	ICalMaxYear = 9999

	// StubVCalendar is the minimal valid iCalendar object used when no event can be exported.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Limits
// -----------------------------------------------------------------------------

const (
	MinPort = 1
	MaxPort = 65535

	MinRefreshMin = 1
	MaxRefreshMin = 24 * 60

	// MaxConvertBodySize caps the body accepted by the conversion endpoint.
	MaxConvertBodySize = 16 * 1024 * 1024
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteTimeline = "/timeline.json"
	RouteICS      = "/timeline.ics"
	RouteConvert  = "/convert"
	RouteExample  = "/example.json"
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"

	QueryDelimiter = "delimiter"
	QueryLang      = "lang"
	QueryFallback  = "fallback"

	// FallbackExample, as the fallback query value, attaches the example document to failures.
	FallbackExample = "example"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"
	HeaderAcceptLanguage  = "Accept-Language"

	MimeJSON            = "application/json; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	CacheControlNoStore = "no-store"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrDelimiter        = "configuration error: unsupported delimiter"
	ErrSettingsRead     = "failed to read settings file"
	ErrSettingsParse    = "failed to parse settings file"
	ErrSettingsInvalid  = "invalid settings"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrRefreshRange     = "refresh interval must be between 1 and 1440 minutes"
	ErrLanguage         = "unsupported language"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrRowsRead         = "failed to read delimited rows"
	ErrHeaderMissing    = "source has no header row"
	ErrAssemble         = "failed to assemble timeline document"
	ErrSchemaCompile    = "failed to compile timeline schema"
	ErrSchemaInvalid    = "timeline document does not match schema"
	ErrJSONEncode       = "failed to encode timeline document"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrWriteOut         = "failed to write output file"
	ErrSourceRequired   = "a source is required with -once"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrBodyRead         = "failed to read request body"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Timeline initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgOK           = "ok"
)

// -----------------------------------------------------------------------------
// Fallback Messages
// -----------------------------------------------------------------------------

const (
	FallbackErrNoData        = "The file contains no data."
	FallbackErrNoValidEvents = "No row could be turned into an event."
	FallbackErrNoCandidates  = "No row has a year."
	FallbackErrNoSurvivors   = "Every row with a year was unusable."
	FallbackErrConversion    = "Conversion failed: %s"
	FallbackErrSchema        = "The generated document is invalid: %s"
	FallbackErrSource        = "The source file could not be read: %s"
	FallbackErrUnknown       = "Unexpected error: %s"

	MsgSyncSuccess   = "Synchronization completed successfully."
	MsgSyncStarted   = "Synchronization started..."
	MsgSyncFailed    = "Synchronization failed. Check logs."
	MsgSyncReq       = "Sync requested"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgUpdateSync    = "Updating sync interval"
	MsgAppStop       = "Application stopped gracefully"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Timeline cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgRowRejected   = "Skipping row without a usable year"
	MsgRowsRead      = "Delimited rows read"
	MsgGenSuccess    = "Timeline generation successful"
	MsgICalSkipped   = "Skipping event outside iCalendar year range"
	MsgConvertFailed = "Conversion request failed"
	MsgRecovered     = "Recovered from panic during assembly"
	MsgReload        = "Reloading settings"
	MsgReloadFailed  = "Settings reload failed, keeping current settings"
	MsgSyncDisabled  = "No source configured, synchronization disabled"
	MsgOutputWritten = "Document written"
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
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyRow       = "row"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyRecords   = "records"
	LogKeyEvents    = "events"
	LogKeyRejected  = "rejected"
	LogKeyExported  = "exported"
	LogKeyUniqueID  = "unique_id"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyRunID     = "run_id"
	LogKeyDelimiter = "delimiter"
	LogKeyDuration  = "duration_ms"
	LogKeyOld       = "old"
	LogKeyRequestID = "request_id"
	LogKeyNew       = "new"

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
	CompTimeline = "timeline"
	CompEngine   = "engine"
	CompReader   = "reader"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace = "gotimeline"

	MetricsSourceSync   = "sync"
	MetricsSourceUpload = "upload"

	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultSuccess  = "success"
	ResultFailure  = "failure"
)
