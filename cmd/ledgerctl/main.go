// Command ledgerctl inspects and maintains a Fintrack ledger directly
// against its database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/money"
	"fintrack/internal/services"
)

// app is the ledger opened for a single command run.
type app struct {
	cfg      *config.Config
	db       *database.Manager
	accounts services.AccountServicer
	budgets  services.BudgetServicer
	exchange services.ExchangeServicer
}

func (a *app) format(amount money.Amount) string {
	return amount.Format(a.cfg.Currency)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var a *app

	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Maintain a Fintrack ledger",
		Long:          `ledgerctl reconciles balances, reports budget progress and moves the ledger in and out of its JSON document format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("db-driver", "", "database driver (postgres, sqlite)")
	flags.String("db-path", "", "SQLite database file")
	flags.String("db-host", "", "PostgreSQL host")
	flags.String("db-name", "", "PostgreSQL database name")
	flags.String("currency", "", "ISO 4217 currency used to display amounts")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	for key, flag := range map[string]string{
		"DB_DRIVER": "db-driver",
		"DB_PATH":   "db-path",
		"DB_HOST":   "db-host",
		"DB_NAME":   "db-name",
		"CURRENCY":  "currency",
		"LOG_LEVEL": "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	open := func() (*app, error) {
		if a != nil {
			return a, nil
		}
		_ = godotenv.Load()
		cfg := config.FromViper(v)
		logger.Init(cfg.Env, cfg.LogLevel)

		db, err := database.NewManager(database.NewConfig(cfg))
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, err
		}

		store := services.NewStore(db.DB())
		publisher := events.Nop{}
		a = &app{
			cfg:      cfg,
			db:       db,
			accounts: services.NewAccountService(store, publisher),
			budgets:  services.NewBudgetService(store, publisher),
			exchange: services.NewExchangeService(store, publisher),
		}
		return a, nil
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if a == nil {
			return nil
		}
		return a.db.Close()
	}

	cmd.AddCommand(reconcileCmd(open))
	cmd.AddCommand(progressCmd(open))
	cmd.AddCommand(summaryCmd(open))
	cmd.AddCommand(exportCmd(open))
	cmd.AddCommand(importCmd(open))
	cmd.AddCommand(seedCmd(open))
	cmd.AddCommand(hashPasswordCmd())

	return cmd
}

// opener lazily opens the ledger; commands that never touch the database
// do not need one configured.
type opener func() (*app, error)
