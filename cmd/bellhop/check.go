package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bellhop-dev/bellhop/internal/config"
)

func checkCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file without connecting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}

			fmt.Printf("server:   %s\n", cfg.Server.Address)
			fmt.Printf("accounts: %d\n", len(cfg.Accounts))
			for _, a := range cfg.Accounts {
				source := "fixed ticket"
				if a.TicketEndpoint != "" {
					source = "web ticket"
				}
				fmt.Printf("  - %s (%s)\n", a.Name, source)
			}
			fmt.Printf("proxies:  %d\n", len(cfg.Proxies))
			fmt.Printf("headers:  %d incoming, %d outgoing\n", reg.Incoming(), reg.Outgoing())
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bellhop.toml", "Path to the configuration file")

	return cmd
}
