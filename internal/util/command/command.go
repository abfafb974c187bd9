// Package command carries the shared plumbing of CLI subcommands.
package command

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-near/internal/config"
	"github/chapool/go-near/internal/near/client"
)

// NewSubcommandGroup groups child commands under a parent that prints its
// usage when invoked bare.
func NewSubcommandGroup(name string, children ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: name,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(children...)
	return cmd
}

// WithClient builds a client from the configuration and runs closure with
// it, returning the closure's error.
func WithClient(ctx context.Context, cfg config.Service, closure func(ctx context.Context, c *client.Client) error) error {
	c, err := client.FromConfig(cfg)
	if err != nil {
		return err
	}
	return closure(ctx, c)
}
