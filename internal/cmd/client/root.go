package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the EzraVerify client.
// It registers the code command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "ezraverify",
		Short: "EzraVerify client commands",
	}
	root.AddCommand(NewCodeCommand(baseURL))
	return root
}
