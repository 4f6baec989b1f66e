package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/db"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/models"
)

type seedOptions struct {
	AdminEmail    string
	AdminPassword string
}

type seedZone struct {
	Code    string
	City    models.City
	LabelEs string
	LabelEn string
}

var defaultZones = []seedZone{
	{Code: "MAD-NORTE", City: models.CityMadrid, LabelEs: "Madrid Norte", LabelEn: "North Madrid"},
	{Code: "MAD-SUR", City: models.CityMadrid, LabelEs: "Madrid Sur", LabelEn: "South Madrid"},
	{Code: "BCN-CENTRO", City: models.CityBarcelona, LabelEs: "Barcelona Centro", LabelEn: "Central Barcelona"},
	{Code: "VLC-CENTRO", City: models.CityValencia, LabelEs: "Valencia Centro", LabelEn: "Central Valencia"},
}

// seed inserts reference zones and an administrator. Running it twice leaves
// the database unchanged.
func seed(ctx context.Context, database *db.DB, opts seedOptions) error {
	return database.RunInTx(ctx, func(tx *db.DB) error {
		for _, zone := range defaultZones {
			_, err := tx.Queries.CreateZone(ctx, dbgen.CreateZoneParams{
				Code:     zone.Code,
				City:     string(zone.City),
				LabelEs:  zone.LabelEs,
				LabelEn:  zone.LabelEn,
				IsActive: true,
			})
			if db.IsUniqueViolation(err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed zone %s: %w", zone.Code, err)
			}
			log.Info().Str("zone", zone.Code).Msg("Seeded zone")
		}

		if opts.AdminEmail == "" {
			log.Warn().Msg("No admin email given; skipping admin seed")
			return nil
		}
		return seedAdmin(ctx, tx, opts)
	})
}

func seedAdmin(ctx context.Context, tx *db.DB, opts seedOptions) error {
	email := identity.NormalizeEmail(opts.AdminEmail)

	existing, err := tx.Queries.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if models.ParseRole(existing.Role) == models.RoleAdmin {
			return nil
		}
		if _, err := tx.Queries.UpdateUserRole(ctx, dbgen.UpdateUserRoleParams{Role: string(models.RoleAdmin), ID: existing.ID}); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		log.Info().Int64("user_id", existing.ID).Msg("Promoted existing user to admin")
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("load admin: %w", err)
	}

	if opts.AdminPassword == "" {
		return errors.New("admin password is required to create the admin account")
	}
	hash, err := identity.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user, err := tx.Queries.CreateUser(ctx, dbgen.CreateUserParams{
		Email:        email,
		PasswordHash: sql.NullString{String: hash, Valid: true},
		Role:         string(models.RoleAdmin),
		FirstName:    "Admin",
		LastName:     "Liga",
		Status:       string(models.UserStatusActive),
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if _, err := tx.Queries.MarkUserEmailVerified(ctx, dbgen.MarkUserEmailVerifiedParams{VerifiedAt: time.Now().UTC(), Email: email}); err != nil {
		return fmt.Errorf("verify admin email: %w", err)
	}
	log.Info().Int64("user_id", user.ID).Msg("Created admin account")
	return nil
}
