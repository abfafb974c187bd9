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

func newKeys() *cobra.Command {
	return &cobra.Command{
		Use:   "keys <account-id>",
		Short: "Lists the access keys of an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			accountID, err := types.ParseAccountID(args[0])
			if err != nil {
				log.Fatal().Err(err).Msg("Invalid account id")
			}

			cfg := config.DefaultServiceConfigFromEnv()
			err = command.WithClient(cmd.Context(), cfg, func(ctx context.Context, c *client.Client) error {
				keys, err := c.AccessKeys(ctx, accountID)
				if err != nil {
					return err
				}
				for _, key := range keys {
					scope := "FullAccess"
					if fc := key.AccessKey.Permission.FunctionCall; fc != nil {
						scope = fmt.Sprintf("FunctionCall(%s)", fc.ReceiverID)
					}
					fmt.Printf("%s  nonce=%d  %s\n", key.PublicKey, key.AccessKey.Nonce, scope)
				}
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Str("account_id", accountID.String()).Msg("Failed to list access keys")
			}
		},
	}
}
