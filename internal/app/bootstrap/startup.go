// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sportsbuddy/sportsbuddy/internal/app/resources"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	userstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/users"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It loads
// the shared templates and seeds the admin account if one is configured.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.SeedAdminEmail != "" {
		if err := ensureSeedAdmin(ctx, deps.MongoDatabase, appCfg.SeedAdminEmail, appCfg.SeedAdminPassword, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureSeedAdmin makes sure an admin account exists for the given email.
// An existing user is promoted to admin; a missing one is created with the
// configured password. Promotion never touches the stored password.
func ensureSeedAdmin(ctx context.Context, db *mongo.Database, email, password string, logger *zap.Logger) error {
	users := userstore.New(db)

	existing, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == "admin" {
			return nil
		}
		_, err := db.Collection("users").UpdateByID(ctx, existing.ID, bson.M{
			"$set": bson.M{"role": "admin"},
		})
		if err != nil {
			return fmt.Errorf("promote seed admin: %w", err)
		}
		logger.Info("promoted existing user to admin", zap.String("email", email))
		return nil

	case errors.Is(err, storeerr.ErrNotFound):
		if password == "" {
			logger.Warn("seed admin not found and no seed_admin_password set; skipping creation",
				zap.String("email", email))
			return nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed admin password: %w", err)
		}
		_, err = users.Create(ctx, models.User{
			Name:         "Admin",
			Email:        email,
			PasswordHash: string(hash),
			Role:         "admin",
		})
		if err != nil {
			return fmt.Errorf("create seed admin: %w", err)
		}
		logger.Info("created seed admin account", zap.String("email", email))
		return nil

	default:
		return fmt.Errorf("look up seed admin: %w", err)
	}
}
