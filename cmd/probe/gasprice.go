package probe

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-near/internal/config"
	"github/chapool/go-near/internal/near/client"
	"github/chapool/go-near/internal/util/command"
)

func newGasPrice() *cobra.Command {
	return &cobra.Command{
		Use:   "gas-price",
		Short: "Queries the current gas price",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.DefaultServiceConfigFromEnv()
			err := command.WithClient(cmd.Context(), cfg, func(ctx context.Context, c *client.Client) error {
				price, err := c.GasPrice(ctx)
				if err != nil {
					return err
				}
				fmt.Println(price)
				return nil
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to query gas price")
			}
		},
	}
}
