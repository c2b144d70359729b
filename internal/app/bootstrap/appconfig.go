// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: core handles ports, TLS,
// logging level, and the like.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: sportsbuddy-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Audit trail mode: "all" (db+log), "db", "log", or "off"
	AuditLogMode string

	// Daily cleanup of past events runs at local midnight in this zone.
	CleanupTimezone string

	// How often the denormalized attendee sets are re-derived from the
	// membership records. Zero disables the sweep.
	ReconcileInterval time.Duration

	// Notification dispatcher queue size.
	NotifyQueueSize int

	// Admin bootstrap: if set, an admin account with these credentials is
	// created (or promoted) on startup.
	SeedAdminEmail    string
	SeedAdminPassword string

	// Base URL used in outward-facing links.
	BaseURL string

	// SMTP configuration for outbound email (password reset links).
	MailSMTPHost string // e.g. localhost for Mailpit, or a provider endpoint
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	// How long a password-reset link stays valid.
	ResetExpiry time.Duration
}
