package account

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-near/internal/config"
	"github/chapool/go-near/internal/near/client"
	"github/chapool/go-near/internal/near/types"
	"github/chapool/go-near/internal/util/command"
)

func newView() *cobra.Command {
	return &cobra.Command{
		Use:   "view <account-id>",
		Short: "Shows the on-chain state of an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			accountID, err := types.ParseAccountID(args[0])
			if err != nil {
				log.Fatal().Err(err).Msg("Invalid account id")
			}

			cfg := config.DefaultServiceConfigFromEnv()
			err = command.WithClient(cmd.Context(), cfg, func(ctx context.Context, c *client.Client) error {
				view, err := c.Account(ctx, accountID)
				if err != nil {
					return err
				}
				raw, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(raw))
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Str("account_id", accountID.String()).Msg("Failed to view account")
			}
		},
	}
}
