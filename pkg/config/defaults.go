package config

// Parser defaults.
const (
	DefaultParserPositions           = false
	DefaultParserParseValue          = true
	DefaultParserParseCustomProperty = false
	DefaultParserParseRulePrelude    = true
	DefaultParserParseAtrulePrelude  = true
)

// Generator defaults.
const (
	DefaultGeneratorMode      = "safe"
	DefaultGeneratorSourceMap = false
)

// Lexer defaults.
const (
	DefaultLexerMaxIterations = 15000
	DefaultLexerCacheSize     = 256
)

// Limits defaults.
const (
	DefaultMaxInputSize = "4MB"
)

// Server defaults.
const (
	DefaultServerHost         = "127.0.0.1"
	DefaultServerPort         = 8080
	DefaultServerReadTimeout  = "30s"
	DefaultServerWriteTimeout = "30s"
	DefaultServerIdleTimeout  = "60s"
	DefaultDiagnosticsAddr    = ""
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Observability defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
	DefaultSampleRatio  = 1.0
)
