// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for SportsBuddy.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SPORTSBUDDY_MONGO_URI, SPORTSBUDDY_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "sportsbuddy", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "sportsbuddy-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Audit trail settings
	{Name: "audit_log_mode", Default: "all", Desc: "Audit trail mode: 'all' (db+log), 'db', 'log', or 'off'"},

	// Background work
	{Name: "cleanup_timezone", Default: "Asia/Kolkata", Desc: "Timezone whose midnight triggers the daily past-event cleanup"},
	{Name: "reconcile_interval", Default: "1h", Desc: "Interval for the membership set reconcile sweep (0 disables)"},
	{Name: "notify_queue_size", Default: 256, Desc: "Notification dispatcher queue size"},

	// Admin bootstrap
	{Name: "seed_admin_email", Default: "", Desc: "Email of the admin user to create or promote on startup"},
	{Name: "seed_admin_password", Default: "", Desc: "Password for the seeded admin (only used when creating)"},

	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for outward-facing links"},

	// Outbound email (password reset links)
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@sportsbuddy.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "SportsBuddy", Desc: "From display name"},
	{Name: "reset_expiry", Default: "1h", Desc: "Password reset link expiry (e.g. 30m, 1h)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, SPORTSBUDDY_* for app), and
// command-line flags with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SPORTSBUDDY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		AuditLogMode: appValues.String("audit_log_mode"),

		CleanupTimezone:   appValues.String("cleanup_timezone"),
		ReconcileInterval: appValues.Duration("reconcile_interval", time.Hour),
		NotifyQueueSize:   appValues.Int("notify_queue_size"),

		SeedAdminEmail:    appValues.String("seed_admin_email"),
		SeedAdminPassword: appValues.String("seed_admin_password"),

		BaseURL: appValues.String("base_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		ResetExpiry: appValues.Duration("reset_expiry", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// SportsBuddy validates the MongoDB URI format and the cleanup timezone to
// catch configuration errors before connecting or scheduling anything.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if _, err := time.LoadLocation(appCfg.CleanupTimezone); err != nil {
		return fmt.Errorf("invalid cleanup_timezone %q: %w", appCfg.CleanupTimezone, err)
	}

	if m := appCfg.AuditLogMode; m != "all" && m != "db" && m != "log" && m != "off" {
		return fmt.Errorf("invalid audit_log_mode %q (want all, db, log, or off)", m)
	}

	if appCfg.SeedAdminEmail != "" && appCfg.SeedAdminPassword == "" {
		logger.Warn("seed_admin_email set without seed_admin_password; an existing user will be promoted but no account can be created")
	}

	return nil
}
