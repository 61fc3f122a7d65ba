// File: cmd/stackup/down.go
// Brief: `stackup down` stops and removes the running stack.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/example/stackup/internal/config"
	"github.com/example/stackup/internal/logging"
	"github.com/example/stackup/internal/provision"
	"github.com/example/stackup/internal/runtime"
	"github.com/example/stackup/internal/stack"
	"github.com/example/stackup/internal/ui"
)

func newDownCommand() *cobra.Command {
	opts := config.NewOptions()
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the stack's containers and network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			applyColorMode(opts.ColorMode)
			log, err := logging.New(opts.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync()

			specs := stack.Catalog(stack.CatalogOptions{})
			plan, err := stack.BuildPlan(specs)
			if err != nil {
				return err
			}
			gw, err := runtime.NewDockerCLI(cmd.Context(), log)
			if err != nil {
				return err
			}
			console := ui.NewConsole(os.Stdout, ui.ConsoleOptions{Enabled: true, Verbose: true})
			orch := provision.New(gw, log, provision.Options{
				Network:   opts.Network,
				Observers: []provision.EventObserver{console},
			})
			orch.Teardown(cmd.Context(), plan)
			return nil
		},
	}
	opts.AddFlags(cmd)
	return cmd
}
