// internal/app/features/events/handler.go
package events

import (
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/sportsbuddy/sportsbuddy/internal/app/features/errors"
	"github.com/sportsbuddy/sportsbuddy/internal/app/membership"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/auditlog"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/notify"
)

// Handler serves the event pages: browse, detail, create, edit, delete, and
// the join/leave membership actions.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *errors.ErrorLogger
	Controller *membership.Controller
	Notifier   *notify.Notifier
	Audit      *auditlog.Logger

	sanitizer *bluemonday.Policy
}

func NewHandler(db *mongo.Database, controller *membership.Controller, notifier *notify.Notifier, auditLog *auditlog.Logger, errLog *errors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		Controller: controller,
		Notifier:   notifier,
		Audit:      auditLog,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}
