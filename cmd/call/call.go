package call

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
	gasFlag     string = "gas"
	depositFlag string = "deposit"
	viewFlag    string = "view"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <contract-id> <method> [json-args]",
		Short: "Invokes a contract method",
		Long: `Invokes a method on a contract. With --view the call is read-only and
needs no signer; otherwise it is submitted as a transaction.`,
		Args: cobra.RangeArgs(2, 3),
		Run:  runCall,
	}
	cmd.Flags().String(gasFlag, "", `gas to attach, e.g. "100 Tgas" (default 30 Tgas)`)
	cmd.Flags().String(depositFlag, "", `deposit to attach, e.g. "1 NEAR"`)
	cmd.Flags().Bool(viewFlag, false, "read-only call, no transaction")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) {
	contractID, err := types.ParseAccountID(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid contract account id")
	}
	method := args[1]
	callArgs := []byte("{}")
	if len(args) == 3 {
		callArgs = []byte(args[2])
	}

	viewOnly, err := cmd.Flags().GetBool(viewFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read view flag")
	}

	cfg := config.DefaultServiceConfigFromEnv()
	err = command.WithClient(cmd.Context(), cfg, func(ctx context.Context, c *client.Client) error {
		if viewOnly {
			result, err := c.RPC().CallFunction(ctx, contractID, method, callArgs, types.BlockFinality(types.FinalityFinal))
			if err != nil {
				return err
			}
			for _, line := range result.Logs {
				log.Info().Str("contract_id", contractID.String()).Msg(line)
			}
			fmt.Println(result)
			return nil
		}

		gas, deposit, err := callAttachments(cmd)
		if err != nil {
			return err
		}
		outcome, err := c.Call(ctx, contractID, method, callArgs, gas, deposit)
		if err != nil {
			return err
		}

		if hash, ok := outcome.TransactionHash(); ok {
			fmt.Printf("transaction: %s\n", hash)
		}
		if value, ok := outcome.SuccessValue(); ok && len(value) > 0 {
			fmt.Println(string(value))
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).
			Str("contract_id", contractID.String()).
			Str("method", method).
			Msg("Failed to call contract")
	}
}

func callAttachments(cmd *cobra.Command) (types.Gas, types.Balance, error) {
	var (
		gas     types.Gas
		deposit types.Balance
	)

	if s, err := cmd.Flags().GetString(gasFlag); err != nil {
		return 0, types.Balance{}, err
	} else if s != "" {
		if gas, err = types.ParseGas(s); err != nil {
			return 0, types.Balance{}, err
		}
	}

	if s, err := cmd.Flags().GetString(depositFlag); err != nil {
		return 0, types.Balance{}, err
	} else if s != "" {
		if deposit, err = types.ParseBalance(s); err != nil {
			return 0, types.Balance{}, err
		}
	}

	return gas, deposit, nil
}
