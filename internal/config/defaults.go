package config

// Scan defaults.
const (
	DefaultScanWorkers     = 0
	DefaultScanSkipHidden  = true
	DefaultScanSkipVendor  = false
	DefaultScanMaxFileSize = ""
)

// DefaultScanExtensions are the file suffixes scanned when none are configured.
var DefaultScanExtensions = []string{".py", ".pyi"}

// Output defaults.
const (
	DefaultOutputFormat = FormatText
)

// Logging defaults.
const (
	DefaultLoggingLevel  = "warn"
	DefaultLoggingFormat = "text"
)

// Observability defaults.
const (
	DefaultOTLPEndpoint    = ""
	DefaultOTLPInsecure    = false
	DefaultMetricsTextfile = ""
)
