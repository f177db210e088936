// Package cli implements ledgerctl, the operator tool for the marketplace ledger.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-marketplace-ledger/internal/config"
	"go-marketplace-ledger/internal/repository"
	"go-marketplace-ledger/pkg/database"
	applog "go-marketplace-ledger/pkg/logger"
)

// RootOptions holds global flags and the lazily opened database.
type RootOptions struct {
	Format string // "json" | "text"

	connect connectFunc
	cfg     *config.Config
	db      *gorm.DB
}

type connectFunc func(cfg *config.Config) (*gorm.DB, error)

var ValidFormats = []string{"text", "json"}

func connectFromConfig(cfg *config.Config) (*gorm.DB, error) {
	log, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return database.Connect(cfg.Database, log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))
}

// NewRootCommand creates the ledgerctl root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(connectFromConfig)
}

func newRootCommand(connect connectFunc) *cobra.Command {
	opts := &RootOptions{connect: connect}

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate the marketplace ledger database",
		Long:  "ledgerctl seeds and maintains accounts and inspects the marketplace ledger.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewAccountsCommand(opts))
	cmd.AddCommand(NewLedgerCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// open loads config and connects once per process; the schema is migrated on first use.
func (o *RootOptions) open() (*config.Config, *gorm.DB, error) {
	if o.db != nil {
		return o.cfg, o.db, nil
	}
	cfg, _ := config.Load()
	db, err := o.connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := repository.Migrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	o.cfg, o.db = cfg, db
	return cfg, db, nil
}

// emit writes v as indented JSON, or calls text for the text format.
func (o *RootOptions) emit(w io.Writer, v interface{}, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
