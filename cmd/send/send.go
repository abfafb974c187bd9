package send

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

const (
	waitFlag string = "wait"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <receiver-id> <amount>",
		Short: "Transfers tokens to an account",
		Long: `Transfers tokens from the configured signer account to the receiver.
The amount requires an explicit unit, e.g. "1.5 NEAR" or "100 yoctoNEAR".`,
		Args: cobra.ExactArgs(2),
		Run:  runSend,
	}
	cmd.Flags().String(waitFlag, "", "execution level to wait for (NONE, INCLUDED, EXECUTED_OPTIMISTIC, INCLUDED_FINAL, EXECUTED, FINAL)")
	return cmd
}

func runSend(cmd *cobra.Command, args []string) {
	receiverID, err := types.ParseAccountID(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid receiver account id")
	}
	amount, err := types.ParseBalance(args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid amount")
	}
	wait, err := cmd.Flags().GetString(waitFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read wait flag")
	}

	cfg := config.DefaultServiceConfigFromEnv()
	err = command.WithClient(cmd.Context(), cfg, func(ctx context.Context, c *client.Client) error {
		b := c.Transaction(receiverID).Transfer(amount)
		if wait != "" {
			b.WithWaitUntil(types.TxExecutionStatus(wait))
		}
		outcome, err := c.Send(ctx, b)
		if err != nil {
			return err
		}

		if hash, ok := outcome.TransactionHash(); ok {
			fmt.Printf("transaction: %s\n", hash)
		}
		fmt.Printf("sent %s to %s\n", amount, receiverID)
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).
			Str("receiver_id", receiverID.String()).
			Msg("Failed to send tokens")
	}
}
