// Command inventoryctl runs maintenance tasks against the inventory database.
package main

import (
	"fmt"
	"os"

	"go-inventory-tracker/internal/config"
	"go-inventory-tracker/internal/repository"
	"go-inventory-tracker/internal/service"
	"go-inventory-tracker/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app holds what every subcommand needs once the database is open.
type app struct {
	db      *gorm.DB
	users   service.UserService
	reports service.ReportService
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var migrate bool

	root := &cobra.Command{
		Use:           "inventoryctl",
		Short:         "Maintenance commands for the inventory tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.ConnectDB(cfg)
			if err != nil {
				return err
			}
			if migrate {
				if err := database.Migrate(db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}
			a.open(db)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db == nil {
				return
			}
			if sqlDB, err := a.db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}
	root.PersistentFlags().BoolVar(&migrate, "migrate", false, "run schema migration before the command")

	root.AddCommand(newUserCmd(a), newReportCmd(a))
	return root
}

func (a *app) open(db *gorm.DB) {
	a.db = db
	a.users = service.NewUserService(repository.NewUserRepo(db), db)
	a.reports = service.NewReportService(repository.NewProductRepo(db), repository.NewCategoryRepo(db))
}
