package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/golandec/invoicebot/internal/bot"
	"github.com/golandec/invoicebot/internal/bot/telegram"
	"github.com/golandec/invoicebot/internal/config"
	"github.com/golandec/invoicebot/internal/dashboard"
	"github.com/golandec/invoicebot/internal/db"
	"github.com/golandec/invoicebot/internal/knowledge"
	"github.com/golandec/invoicebot/internal/refresh"
	"github.com/golandec/invoicebot/internal/sheets"
	"github.com/golandec/invoicebot/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gdb, err := db.Connect(cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}
		st := store.New(gdb)

		prov, err := sheets.New(ctx, sheets.Opts{
			CredentialsJSON: cfg.Google.ServiceAccountJSON,
			TemplateID:      cfg.Google.TemplateID,
			OperatorEmail:   cfg.Google.OperatorEmail,
			ShareAnyone:     *cfg.Google.ShareAnyone,
		})
		if err != nil {
			return err
		}

		responder, err := knowledge.New(knowledge.Opts{
			APIKey: cfg.OpenAI.APIKey,
			Model:  cfg.OpenAI.Model,
			Facts:  cfg.Bot.Facts,
		})
		if err != nil {
			return err
		}

		adapter, err := telegram.New(telegram.Opts{Token: cfg.Telegram.Token, Out: os.Stdout})
		if err != nil {
			return err
		}

		engine, err := bot.NewEngine(bot.EngineOpts{
			Sessions:         bot.NewMemorySessionStore(),
			Store:            st,
			Provisioner:      prov,
			Adapter:          adapter,
			Cities:           cfg.Bot.Cities,
			BalanceReadCell:  cfg.Google.BalanceReadCell,
			BalanceWriteCell: cfg.Google.BalanceWriteCell,
			Out:              os.Stdout,
		})
		if err != nil {
			return err
		}

		router, err := bot.NewRouter(bot.RouterOpts{
			Engine:      engine,
			Store:       st,
			Responder:   responder,
			Adapter:     adapter,
			AdminIDs:    cfg.Admin.ChatIDs,
			InvoicePage: cfg.Bot.InvoicePage,
			Out:         os.Stdout,
		})
		if err != nil {
			return err
		}

		daemon, err := bot.NewDaemon(bot.DaemonOpts{Adapter: adapter, Router: router, Out: os.Stdout})
		if err != nil {
			return err
		}

		if cfg.Refresh.Enabled {
			refresher, err := refresh.New(refresh.Opts{
				Store:       st,
				Provisioner: prov,
				BalanceCell: cfg.Google.BalanceReadCell,
				Schedule:    cfg.Refresh.Cron,
				Out:         os.Stdout,
			})
			if err != nil {
				return err
			}
			if err := refresher.Start(ctx); err != nil {
				return err
			}
		}

		if cfg.Dashboard.Enabled {
			srv, err := dashboard.New(dashboard.Opts{
				Store: st,
				Port:  cfg.Dashboard.Port,
				Out:   os.Stdout,
			})
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Run(ctx); err != nil {
					cmd.PrintErrf("dashboard: %v\n", err)
				}
			}()
		}

		return daemon.Run(ctx)
	},
}
