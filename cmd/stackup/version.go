// File: cmd/stackup/version.go
// Brief: `stackup version` prints build metadata.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/stackup/internal/buildinfo"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stackup version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Version)
		},
	}
}
