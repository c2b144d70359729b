// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config controls where audit entries go.
// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only),
// "off" (disabled).
type Config struct {
	Mode string
}

// Logger records audit entries to the logs collection and to structured
// logs. Failures are logged and swallowed: an audit write must never abort
// or roll back the operation that triggered it. A nil Logger is a no-op so
// tests can pass nil.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates an audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// Record writes one audit entry per the configured mode.
func (l *Logger) Record(ctx context.Context, actorID *primitive.ObjectID, action, targetCollection, targetID string, details map[string]string) {
	if l == nil {
		return
	}

	mode := l.config.Mode
	if mode == "" {
		mode = "all"
	}
	if mode == "off" {
		return
	}

	if mode == "all" || mode == "log" {
		fields := []zap.Field{
			zap.Bool("audit", true),
			zap.String("action", action),
			zap.String("target_collection", targetCollection),
			zap.String("target_id", targetID),
		}
		if actorID != nil {
			fields = append(fields, zap.String("actor_uid", actorID.Hex()))
		}
		for k, v := range details {
			fields = append(fields, zap.String("detail_"+k, v))
		}
		l.zapLog.Info("audit entry", fields...)
	}

	if mode == "all" || mode == "db" {
		entry := models.AuditEntry{
			ActorID:          actorID,
			Action:           action,
			TargetCollection: targetCollection,
			TargetID:         targetID,
			Details:          details,
		}
		if err := l.store.Record(ctx, entry); err != nil {
			l.zapLog.Error("failed to store audit entry",
				zap.Error(err),
				zap.String("action", action))
		}
	}
}
