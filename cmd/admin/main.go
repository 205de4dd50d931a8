package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/welth-app/welth/internal/admin"
	"github.com/welth-app/welth/internal/config"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/repository/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "welth-admin",
		Short:         "Operator tasks for the Welth backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGrantPremiumCmd())
	root.AddCommand(newRevokePremiumCmd())
	root.AddCommand(newImportPlanCmd())

	return root
}

// withService opens the configured database and runs fn against it
func withService(fn func(ctx context.Context, svc *admin.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	return fn(context.Background(), newService(db, log))
}

func newService(db *sql.DB, log *logger.Logger) *admin.Service {
	return admin.NewService(
		postgres.NewUserRepository(db),
		postgres.NewSubscriptionRepository(db),
		postgres.NewPlanRepository(db),
		log,
	)
}

func newGrantPremiumCmd() *cobra.Command {
	var until string

	cmd := &cobra.Command{
		Use:   "grant-premium <user-id|username>",
		Short: "Give a user the premium tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var end *time.Time
			if until != "" {
				t, err := time.Parse("2006-01-02", until)
				if err != nil {
					return fmt.Errorf("invalid --until date: %w", err)
				}
				end = &t
			}

			return withService(func(ctx context.Context, svc *admin.Service) error {
				sub, err := svc.GrantPremium(ctx, args[0], end)
				if err != nil {
					return err
				}
				fmt.Printf("User %s is now %s\n", sub.UserID, sub.Tier)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&until, "until", "", "end of the premium period (YYYY-MM-DD)")

	return cmd
}

func newRevokePremiumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-premium <user-id|username>",
		Short: "Return a user to the free tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, svc *admin.Service) error {
				sub, err := svc.RevokePremium(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("User %s is now %s\n", sub.UserID, sub.Tier)
				return nil
			})
		},
	}
}

func newImportPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-plan <user-id|username> <file>",
		Short: "Store a habit plan from a JSON or YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := admin.DecodePlanDocument(f)
			if err != nil {
				return err
			}

			return withService(func(ctx context.Context, svc *admin.Service) error {
				p, err := svc.ImportPlan(ctx, args[0], doc)
				if err != nil {
					return err
				}
				fmt.Printf("Imported plan %s with %d habits\n", p.ID, len(p.Habits))
				return nil
			})
		},
	}
}
