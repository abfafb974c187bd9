package probe

import (
	"github.com/spf13/cobra"
	"github/chapool/go-near/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newStatus(),
		newGasPrice(),
	)
}
