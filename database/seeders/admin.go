package seeders

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/turnosapp/turnos/app/repositories"
	"github.com/turnosapp/turnos/app/services"
	"github.com/turnosapp/turnos/config"
	"github.com/turnosapp/turnos/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
}

// ErrAdminCredentials is returned when ADMIN_EMAIL or ADMIN_PASSWORD is unset.
var ErrAdminCredentials = errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")

// SeedAdmin creates the default administrator unless one with the same
// email already exists.
func SeedAdmin(ctx context.Context, db *mongo.Database) error {
	email, password := config.AdminEmail(), config.AdminPassword()
	if email == "" || password == "" {
		return ErrAdminCredentials
	}

	auth := services.NewAuthService(repositories.NewUserRepository(db), nil)
	created, err := auth.EnsureAdmin(ctx, email, password)
	if err != nil {
		return err
	}

	logger.Info("admin seeder", "email", email, "created", created)
	return nil
}
