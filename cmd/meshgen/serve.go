package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/alevsk/meshgen/internal/api"
	"github.com/alevsk/meshgen/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Server flags
	serverHost    string
	serverPort    int
	serverTimeout string
	serveProfile  string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only catalog preview server",
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Override config values with flags if provided
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}
		if cmd.Flags().Changed("timeout") {
			duration, err := time.ParseDuration(serverTimeout)
			if err != nil {
				return fmt.Errorf("invalid timeout %q: %w", serverTimeout, err)
			}
			cfg.Server.Timeout = duration
		}
		if cmd.Flags().Changed("profile") {
			cfg.Profile = config.Profile(serveProfile)
		}
		cfg.ApplyProfileDefaults()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
		return s.Start(cmd.Context(), addr)
	},
}

func init() {
	// Server flags
	serveCmd.Flags().StringVarP(&serverHost, "host", "H", "", "Server host (default: 127.0.0.1)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default: 8080)")
	serveCmd.Flags().StringVarP(&serverTimeout, "timeout", "t", "", "Server timeout (e.g., 30s, 1m)")
	serveCmd.Flags().StringVar(&serveProfile, "profile", "", "catalog variant to preview (tracing, central)")
}
