package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dimitrije/tandem-api/internal/config"
	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/models"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database to the latest schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("migration: %w", err)
			}

			cmd.Println("database migrated")
			return nil
		},
	}

	promoteCmd = &cobra.Command{
		Use:   "promote EMAIL TEAM_ID ROLE",
		Short: "Set a user's role in a team",
		Long: `Set a user's role in a team, adding the membership if needed.
ROLE is a number from 0 (admin) to 3 (viewer) or one of
admin, manager, member, viewer.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			teamID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid team id %q", args[1])
			}
			role, err := parseRole(args[2])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := services.NewUserService(db).GetByEmail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("find user %s: %w", args[0], err)
			}

			teams := services.NewTeamService(db)
			if _, err := teams.GetByID(ctx, teamID); err != nil {
				return fmt.Errorf("find team %s: %w", teamID, err)
			}
			if err := teams.SetRole(ctx, teamID, user.ID, role); err != nil {
				return fmt.Errorf("set role: %w", err)
			}

			cmd.Printf("%s is now %s of team %s\n", user.Email, models.RoleName(role), teamID)
			return nil
		},
	}
)

func openDB(ctx context.Context) (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return database.New(ctx, cfg.DatabaseURL)
}

// parseRole accepts a role number or its name.
func parseRole(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if !models.ValidRole(n) {
			return 0, fmt.Errorf("role must be between %d and %d", models.RoleAdmin, models.RoleViewer)
		}
		return n, nil
	}
	for role := models.RoleAdmin; role <= models.RoleViewer; role++ {
		if strings.EqualFold(s, models.RoleName(role)) {
			return role, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}
