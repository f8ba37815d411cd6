package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 30 * time.Second
	ServerWriteTimeout    = 60 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Admin sessions
const (
	AdminSessionCookie = "admin_auth"
	AdminSessionTTL    = 24 * time.Hour
)

// Pagination
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Request body limits. Multipart bodies carry one image of up to 10 MiB plus
// the form fields.
const (
	MaxJSONBodyBytes      = 1 << 20
	MaxMultipartBodyBytes = 11 << 20
	MultipartMemoryBytes  = 12 << 20
)

// Rate limiting window shared by the login and contact limiters
const RateLimitWindow = time.Minute

// Purge tool
const PurgeTimeout = 30 * time.Second
