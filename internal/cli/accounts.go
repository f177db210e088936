package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-marketplace-ledger/internal/model"
	"go-marketplace-ledger/internal/repository"
	"go-marketplace-ledger/internal/service"
	"go-marketplace-ledger/pkg/units"
)

func NewAccountsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage ledger accounts",
	}

	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newListAccountsCommand(opts))
	cmd.AddCommand(newResetPasswordCommand(opts))
	cmd.AddCommand(newSetActiveCommand(opts, "disable", false))
	cmd.AddCommand(newSetActiveCommand(opts, "enable", true))

	return cmd
}

func printAccounts(w io.Writer, accounts []model.AccountResponse) {
	for _, a := range accounts {
		status := "active"
		if !a.IsActive {
			status = "disabled"
		}
		eth, _ := units.FromWei(a.Balance, units.Ether)
		fmt.Fprintf(w, "%s  %s ETH  %s\n", a.Address, eth.String(), status)
	}
}

func newSeedCommand(opts *RootOptions) *cobra.Command {
	var (
		count     int
		addresses []string
		password  string
		fund      string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register funded accounts",
		Long: `Register accounts with the given password and an initial balance.

With --address the listed addresses are registered; otherwise --count
fresh addresses are generated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := opts.open()
			if err != nil {
				return err
			}

			faucet := cfg.FaucetEther
			if fund != "" {
				if faucet, err = units.EtherToWei(fund); err != nil {
					return fmt.Errorf("invalid --fund: %w", err)
				}
				if faucet.IsNegative() {
					return fmt.Errorf("invalid --fund %q: must not be negative", fund)
				}
			} else if faucet, err = units.ToWei(faucet, units.Ether); err != nil {
				return err
			}

			authService := service.NewAuthService(repository.NewAccountRepo(db), faucet)

			reqs := make([]service.RegisterRequest, 0, count)
			for _, addr := range addresses {
				reqs = append(reqs, service.RegisterRequest{Address: addr, Password: password})
			}
			if len(addresses) == 0 {
				for i := 0; i < count; i++ {
					reqs = append(reqs, service.RegisterRequest{Password: password})
				}
			}

			created := make([]model.AccountResponse, 0, len(reqs))
			for i := range reqs {
				account, err := authService.Register(cmd.Context(), &reqs[i])
				if err != nil {
					return fmt.Errorf("register %q: %w", reqs[i].Address, err)
				}
				created = append(created, account.ToResponse())
			}

			return opts.emit(cmd.OutOrStdout(), created, func(w io.Writer) {
				printAccounts(w, created)
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 3, "number of accounts to generate when no --address is given")
	cmd.Flags().StringSliceVar(&addresses, "address", nil, "address to register (repeatable)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for every seeded account")
	cmd.Flags().StringVar(&fund, "fund", "", "initial balance in ether (defaults to FAUCET_ETHER)")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newListAccountsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open()
			if err != nil {
				return err
			}
			accounts, err := repository.NewAccountRepo(db).FindAll(cmd.Context())
			if err != nil {
				return err
			}

			out := make([]model.AccountResponse, 0, len(accounts))
			for i := range accounts {
				out = append(out, accounts[i].ToResponse())
			}
			return opts.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
				printAccounts(w, out)
			})
		},
	}
}

func newResetPasswordCommand(opts *RootOptions) *cobra.Command {
	var address, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password without the old one",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open()
			if err != nil {
				return err
			}
			authService := service.NewAuthService(repository.NewAccountRepo(db), units.MustEther("0"))
			if err := authService.ResetPassword(cmd.Context(), address, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password for %s has been reset\n", address)
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "account address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newSetActiveCommand(opts *RootOptions, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <address>",
		Short: use + " an account's logins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := normalizeAddress(args[0])
			if err != nil {
				return err
			}
			_, db, err := opts.open()
			if err != nil {
				return err
			}
			if err := repository.NewAccountRepo(db).SetActive(cmd.Context(), address, active); err != nil {
				return fmt.Errorf("%s %s: %w", use, address, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %sd\n", address, use)
			return nil
		},
	}
}
