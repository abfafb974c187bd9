package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-near/cmd/account"
	"github/chapool/go-near/cmd/call"
	"github/chapool/go-near/cmd/env"
	"github/chapool/go-near/cmd/keygen"
	"github/chapool/go-near/cmd/probe"
	"github/chapool/go-near/cmd/send"
	"github/chapool/go-near/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "near",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

A NEAR transaction construction, signing and submission client.
Requires configuration through ENV.`, config.ModuleName),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(config.DefaultServiceConfigFromEnv())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		account.New(),
		call.New(),
		env.New(),
		keygen.New(),
		probe.New(),
		send.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}

func configureLogging(cfg config.Service) {
	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logger.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter())
	}
}
