package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/golandec/invoicebot/internal/config"
	"github.com/golandec/invoicebot/internal/db"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		gdb, err := db.Connect(cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}
		fmt.Println("migrations applied")
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database connectivity and schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		gdb, err := db.Connect(cfg.Database.URL)
		if err != nil {
			return err
		}
		for _, model := range db.AllModels() {
			if !gdb.Migrator().HasTable(model) {
				return fmt.Errorf("missing table for %T, run `invoicebot db migrate`", model)
			}
		}
		fmt.Println("database ok")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
}
