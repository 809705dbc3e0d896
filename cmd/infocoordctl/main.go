package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Prakashmoharana1985/O-RAN/internal/config"
	"github.com/Prakashmoharana1985/O-RAN/internal/logging"
	"github.com/Prakashmoharana1985/O-RAN/internal/node"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "infocoordctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "infocoordctl",
		Short:         "Information job coordinator and RIC policy reconciler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newConfigCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the coordinator node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.ConfigureRuntime()
			cfg, err := loadNodeConfig(configPath)
			if err != nil {
				return err
			}
			n, err := node.New(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info().Str("config", configPath).Msg("infocoordctl_run")
			return n.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.toml", "node config path")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate configuration files",
	}

	var (
		out   string
		kind  string
		force bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.WriteTemplate(out, kind, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s config to %s\n", kind, out)
			return nil
		},
	}
	initCmd.Flags().StringVar(&out, "out", "config.toml", "output path")
	initCmd.Flags().StringVar(&kind, "kind", "node", "config kind: node|rics")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	var input string
	var validateKind string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch validateKind {
			case "node":
				if _, err := loadNodeConfig(input); err != nil {
					return err
				}
			case "rics":
				if _, err := config.LoadRics(input); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown config kind: %s", validateKind)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "validated %s config at %s\n", validateKind, input)
			return nil
		},
	}
	validateCmd.Flags().StringVar(&input, "config", "config.toml", "config path")
	validateCmd.Flags().StringVar(&validateKind, "kind", "node", "config kind: node|rics")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
