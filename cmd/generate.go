package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/geosim/trafficdatasim/internal/simulator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic GPS trace dataset",
	Long: `Simulates a home→work→home commute day for every driver, with
congestion-dependent slowdown during the commute windows, and writes the
pooled dataset to the configured output destination.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		sim := simulator.NewSimulator(cfg, log)
		if err := sim.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Simulation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	generateCmd.Flags().Int("seed", 42, "Random seed for simulation")
	generateCmd.Flags().String("start-date", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339), "First simulated day")
	generateCmd.Flags().Int("num-drivers", 100, "Number of drivers to simulate")
	generateCmd.Flags().Int("simulation-days", 1, "Number of days to simulate")
	generateCmd.Flags().String("output-file", "traffic_data.json", "Output file path")
	generateCmd.Flags().String("output-format", "json", "Output format: json, csv, parquet or postgres")
	generateCmd.Flags().Bool("kafka-enabled", false, "Stream samples to Kafka instead of writing a file")
	generateCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")

	viper.BindPFlag("seed", generateCmd.Flags().Lookup("seed"))
	viper.BindPFlag("start_date", generateCmd.Flags().Lookup("start-date"))
	viper.BindPFlag("num_drivers", generateCmd.Flags().Lookup("num-drivers"))
	viper.BindPFlag("simulation_days", generateCmd.Flags().Lookup("simulation-days"))
	viper.BindPFlag("output_path", generateCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("output_format", generateCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("kafka_enabled", generateCmd.Flags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka_broker_list", generateCmd.Flags().Lookup("kafka-broker-list"))

	rootCmd.AddCommand(generateCmd)
}
