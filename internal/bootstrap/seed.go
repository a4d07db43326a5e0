package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Sherryli112/HatGiveMe/internal/auth"
	"github.com/Sherryli112/HatGiveMe/internal/config"
	"github.com/Sherryli112/HatGiveMe/internal/domain"
	"github.com/Sherryli112/HatGiveMe/internal/repository"
)

// EnsurePrimaryAdmin creates the configured primary administrator when it
// does not exist yet, so a fresh deployment always has an active admin.
func EnsurePrimaryAdmin(ctx context.Context, users repository.UserRepository, cfg config.Config, logger *zap.Logger) error {
	email := cfg.Store.PrimaryAdminEmail
	if email == "" {
		logger.Warn("ADMIN_EMAIL not configured; skipping admin seed")
		return nil
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		logger.Info("primary admin already exists", zap.String("email", email))
		return nil
	} else if err != pgx.ErrNoRows {
		return err
	}

	if cfg.Store.SeedAdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD not configured; cannot seed primary admin", zap.String("email", email))
		return nil
	}

	hash, err := auth.HashPassword(cfg.Store.SeedAdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Name:         cfg.Store.SeedAdminName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	logger.Info("primary admin created", zap.String("email", email))
	return nil
}
