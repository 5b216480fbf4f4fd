package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/geosim/trafficdatasim/internal/domain"
	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the secure-computation domain as an HTTP service",
	Long: `Hosts the domain workflow over HTTP: data owners upload datasets and
approve or deny analysis requests, researchers submit requests and fetch
aggregate results. Raw GPS samples never leave the service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server := domain.NewServer(cfg, domain.New(log), log)
		return server.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}
