// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/email"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	auditlogfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/auditlog"
	errorsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	eventsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/events"
	healthfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/health"
	homefeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/home"
	loginfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/login"
	logoutfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/logout"
	notificationsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/notifications"
	passwordresetfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/passwordreset"
	profilefeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/profile"
	refdatafeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/refdata"
	registerfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/register"
	requestsfeature "github.com/sportsbuddy/sportsbuddy/internal/app/features/requests"
	"github.com/sportsbuddy/sportsbuddy/internal/app/membership"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	eventstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/events"
	membershipstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/memberships"
	notificationstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/notifications"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auditlog"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auth"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/mailer"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/notify"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/tasks"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/workers"
)

// Background workers started in BuildHandler and stopped in Shutdown.
// WAFFLE's hook signatures give Shutdown no way to reach values built here,
// so they are stashed at package level.
var (
	notifier      *notify.Notifier
	cleanupWorker *workers.EventCleanup
	jobRunner     *tasks.Runner
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. SportsBuddy initializes the template
// engine, applies session middleware, starts the background workers, and
// mounts feature routers for every application area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Session manager with secure cookies in production.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	// Notification dispatcher.
	var notifyOpts []notify.Option
	if appCfg.NotifyQueueSize > 0 {
		notifyOpts = append(notifyOpts, notify.WithQueueSize(appCfg.NotifyQueueSize))
	}
	notifier = notify.New(notificationstore.New(db), logger, notifyOpts...)
	notifier.Start()

	// Audit trail.
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{Mode: appCfg.AuditLogMode})

	// Membership state machine shared by the events and requests features.
	controller := membership.New(membershipstore.New(db), eventstore.New(db), notifier, auditLog, logger)

	// Daily past-event purge at local midnight in the configured zone.
	// ValidateConfig already vetted the zone name.
	loc, err := time.LoadLocation(appCfg.CleanupTimezone)
	if err != nil {
		return nil, err
	}
	cleanupWorker = workers.NewEventCleanup(eventstore.New(db), auditLog, logger, loc)
	cleanupWorker.Start()

	// Periodic reconcile of the denormalized attendee sets.
	if appCfg.ReconcileInterval > 0 {
		jobRunner = tasks.NewRunner(logger,
			tasks.ReconcileJob(eventstore.New(db), controller, logger, appCfg.ReconcileInterval))
		jobRunner.Start()
	}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli).
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages.
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication.
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	registerHandler := registerfeature.NewHandler(db, sessionMgr, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Password reset via emailed link.
	mail := mailer.New(email.Config{
		Host:        appCfg.MailSMTPHost,
		Port:        appCfg.MailSMTPPort,
		Username:    appCfg.MailSMTPUser,
		Password:    appCfg.MailSMTPPass,
		FromAddress: appCfg.MailFrom,
		FromName:    appCfg.MailFromName,
	}, "SportsBuddy", logger)
	resetHandler := passwordresetfeature.NewHandler(db, mail, appCfg.BaseURL, appCfg.ResetExpiry, errLog, logger)
	r.Mount("/password-reset", passwordresetfeature.Routes(resetHandler))

	// Error pages.
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Profile.
	profileHandler := profilefeature.NewHandler(db, errLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Events and their join-request triage.
	requestsHandler := requestsfeature.NewHandler(db, controller, errLog, logger)
	eventsHandler := eventsfeature.NewHandler(db, controller, notifier, auditLog, errLog, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler,
		requestsfeature.Routes(requestsHandler, sessionMgr), sessionMgr))

	// Notifications inbox.
	notificationsHandler := notificationsfeature.NewHandler(db, errLog, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	// Admin consoles.
	refdataHandler := refdatafeature.NewHandler(db, auditLog, errLog, logger)
	r.Mount("/admin/refdata", refdatafeature.Routes(refdataHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, errLog, logger)
	r.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}
