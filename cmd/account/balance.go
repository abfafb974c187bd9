package account

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-near/internal/config"
	"github/chapool/go-near/internal/near/client"
	"github/chapool/go-near/internal/near/types"
	"github/chapool/go-near/internal/util/command"
)

func newBalance() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Shows the balance breakdown of an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			accountID, err := types.ParseAccountID(args[0])
			if err != nil {
				log.Fatal().Err(err).Msg("Invalid account id")
			}

			cfg := config.DefaultServiceConfigFromEnv()
			err = command.WithClient(cmd.Context(), cfg, func(ctx context.Context, c *client.Client) error {
				balance, err := c.Balance(ctx, accountID)
				if err != nil {
					return err
				}
				fmt.Printf("total:        %s\n", balance.Total)
				fmt.Printf("available:    %s\n", balance.Available)
				fmt.Printf("locked:       %s\n", balance.Locked)
				fmt.Printf("storage cost: %s (%d bytes)\n", balance.StorageCost, balance.StorageUsage)
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Str("account_id", accountID.String()).Msg("Failed to fetch balance")
			}
		},
	}
}
