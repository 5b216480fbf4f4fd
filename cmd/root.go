package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	log     = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "trafficdatasim",
	Short: "Simulates GPS traces and privacy-preserving congestion analysis",
	Long: `trafficdatasim is a CLI tool that simulates a day of GPS traces for a
fleet of commuting drivers, pools them into a dataset, and runs a
grid-based congestion analysis through a simulated secure-computation
domain: datasets are uploaded, analysis requests await owner approval,
and only aggregate results ever leave the domain.`,
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initLogging() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		log.SetLevel(logrus.DebugLevel)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
