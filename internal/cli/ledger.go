package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"go-marketplace-ledger/internal/repository"
)

type ledgerInfo struct {
	Name         string    `json:"name"`
	ProductCount uint64    `json:"product_count"`
	Sold         int       `json:"sold"`
	DeployedAt   time.Time `json:"deployed_at"`
}

func NewLedgerCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the ledger",
	}
	cmd.AddCommand(newLedgerInfoCommand(opts))
	return cmd
}

func newLedgerInfoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show ledger name and product counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := opts.open()
			if err != nil {
				return err
			}

			state, err := repository.NewLedgerRepo(db).Get(cmd.Context())
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("ledger has not been initialised; start the api once")
			}
			if err != nil {
				return err
			}

			products, err := repository.NewProductRepo(db).FindAll(cmd.Context(), 0, 0)
			if err != nil {
				return err
			}
			info := ledgerInfo{
				Name:         state.Name,
				ProductCount: state.ProductCount,
				DeployedAt:   state.CreatedAt,
			}
			for _, p := range products {
				if p.Purchased {
					info.Sold++
				}
			}

			return opts.emit(cmd.OutOrStdout(), info, func(w io.Writer) {
				fmt.Fprintf(w, "name:      %s\n", info.Name)
				fmt.Fprintf(w, "products:  %d (%d sold)\n", info.ProductCount, info.Sold)
				fmt.Fprintf(w, "deployed:  %s\n", info.DeployedAt.Format(time.RFC3339))
			})
		},
	}
}

func normalizeAddress(raw string) (string, error) {
	if !common.IsHexAddress(raw) {
		return "", fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(raw).Hex(), nil
}
