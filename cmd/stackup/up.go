// File: cmd/stackup/up.go
// Brief: `stackup up` provisions the full stack.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/stackup/internal/assets"
	"github.com/example/stackup/internal/compose"
	"github.com/example/stackup/internal/config"
	"github.com/example/stackup/internal/credentials"
	"github.com/example/stackup/internal/logging"
	"github.com/example/stackup/internal/provision"
	"github.com/example/stackup/internal/runtime"
	"github.com/example/stackup/internal/stack"
	"github.com/example/stackup/internal/ui"
)

func newUpCommand() *cobra.Command {
	opts := config.NewOptions()
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Download templates, generate credentials, and start every service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), opts, !cmd.Flags().Changed("domain"))
		},
	}
	opts.AddFlags(cmd)
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "Remove any previous stack instance before starting")
	return cmd
}

func runUp(ctx context.Context, opts *config.Options, promptDomain bool) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	applyColorMode(opts.ColorMode)
	log, err := logging.New(opts.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := opts.ResolveSecrets(ctx); err != nil {
		return err
	}
	if err := promptMissing(opts, promptDomain); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	creds, err := loadOrInitCredentials(opts)
	if err != nil {
		return err
	}

	fetcher := assets.NewFetcher(opts.AssetsURL, log)
	if err := fetcher.FetchAll(ctx, opts.InstallDir); err != nil {
		return err
	}

	specs := stack.Catalog(stack.CatalogOptions{EnableEmailSignup: opts.EnableEmailSignup})
	plan, err := stack.BuildPlan(specs)
	if err != nil {
		return err
	}

	values := opts.Values()
	values["POSTGRES_PASSWORD"] = creds.DBPassword
	values["JWT_SECRET"] = creds.JWTSecret
	values["ANON_KEY"] = creds.AnonKey
	values["SERVICE_ROLE_KEY"] = creds.ServiceRoleKey

	gw, err := runtime.NewDockerCLI(ctx, log)
	if err != nil {
		return err
	}

	console := ui.NewConsole(os.Stdout, ui.ConsoleOptions{
		Enabled: true,
		Verbose: opts.LogLevel == "debug",
	})
	orch := provision.New(gw, log, provision.Options{
		Network:    opts.Network,
		Values:     values,
		Reset:      opts.Reset,
		InstallDir: opts.InstallDir,
		Observers:  []provision.EventObserver{console},
	})

	res, err := orch.Provision(ctx, specs, plan)
	if err != nil {
		var startErr *provision.ServiceStartError
		if errors.As(err, &startErr) {
			log.Errorw("bring-up aborted", "failedService", startErr.Service, "started", res.Succeeded)
		}
		return err
	}

	credsPath, err := creds.WriteFile(opts.InstallDir, opts.Domain)
	if err != nil {
		return err
	}
	if _, err := compose.WriteFile(opts.InstallDir, "stackup", opts.Network, specs, values); err != nil {
		return err
	}

	ui.PrintSummary(os.Stdout, creds.BuildArtifact(opts.Domain), credsPath)
	return nil
}

// loadOrInitCredentials reuses the credential artifact from a prior run when
// present so resets keep the same secrets, generating fresh ones otherwise.
func loadOrInitCredentials(opts *config.Options) (*credentials.Set, error) {
	existing, err := credentials.LoadFile(opts.InstallDir)
	switch {
	case err == nil:
		if opts.DBPassword != "" && opts.DBPassword != existing.DBPassword {
			return nil, fmt.Errorf("--db-password differs from %s; remove the file to rotate credentials", credentials.FileName)
		}
		if opts.JWTSecret != "" && opts.JWTSecret != existing.JWTSecret {
			return nil, fmt.Errorf("--jwt-secret differs from %s; remove the file to rotate credentials", credentials.FileName)
		}
		return existing, nil
	case os.IsNotExist(err):
		return credentials.Initialize(opts.DBPassword, opts.JWTSecret)
	default:
		return nil, fmt.Errorf("read %s: %w", credentials.FileName, err)
	}
}

// promptMissing asks for values the flags left unset, unless the run is
// non-interactive.
func promptMissing(opts *config.Options, promptDomain bool) error {
	interactive := !opts.NonInteract && ui.IsTerminal(os.Stdout)

	if promptDomain && interactive {
		domain, err := ui.Prompt(os.Stdout, os.Stdin, "Domain or IP clients will use", opts.Domain)
		if err != nil {
			return err
		}
		opts.Domain = domain
	}

	if !opts.EnableEmailSignup || opts.SMTPPass != "" {
		return nil
	}
	if !interactive {
		return fmt.Errorf("email signup requires --smtp-pass")
	}
	pass, err := ui.PromptSecret(os.Stdout, os.Stdin, "SMTP password")
	if err != nil {
		return err
	}
	if pass == "" {
		return fmt.Errorf("email signup requires an SMTP password")
	}
	opts.SMTPPass = pass
	return nil
}
