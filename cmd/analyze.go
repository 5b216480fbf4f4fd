package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/geosim/trafficdatasim/internal/analysis"
	"github.com/geosim/trafficdatasim/internal/domain"
	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the congestion analysis through the domain workflow",
	Long: `Loads a generated dataset, uploads it to an in-process secure domain,
submits the grid congestion analysis, walks the owner-approval gate, and
prints the aggregate hotspot report. With --approve=false the request is
left pending and no result is produced, mirroring a real deployment where
the data owner decides asynchronously.`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	input, _ := cmd.Flags().GetString("input")
	approve, _ := cmd.Flags().GetBool("approve")
	reportFile, _ := cmd.Flags().GetString("report-file")

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read dataset: %w", err)
	}
	var dataset models.TrafficDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		return fmt.Errorf("failed to parse dataset: %w", err)
	}

	log.WithField("total_points", dataset.Metadata.TotalPoints).Info("dataset loaded")

	dom := domain.New(log)
	datasetID := dom.UploadDataset(&dataset)

	aggregator := analysis.NewAggregator(cfg)
	request, err := dom.SubmitRequest(datasetID, aggregator.Aggregate)
	if err != nil {
		return fmt.Errorf("failed to submit analysis request: %w", err)
	}

	if !approve {
		log.WithField("request_id", request.ID).Info("request left pending, no result released")
		return nil
	}

	if err := dom.Approve(request.ID); err != nil {
		return fmt.Errorf("failed to approve analysis request: %w", err)
	}
	report, err := dom.Result(request.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch analysis result: %w", err)
	}

	log.WithFields(logrus.Fields{
		"total_points": report.TotalGpsPoints,
		"hotspots":     len(report.Hotspots),
	}).Info("congestion analysis complete")

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if reportFile != "" {
		return os.WriteFile(reportFile, out, 0o644)
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	analyzeCmd.Flags().String("input", "traffic_data.json", "Dataset file to analyze")
	analyzeCmd.Flags().Bool("approve", true, "Approve the analysis request as the data owner")
	analyzeCmd.Flags().String("report-file", "", "Write the report to a file instead of stdout")
	analyzeCmd.Flags().Int("grid-size", 10, "Congestion grid resolution")
	analyzeCmd.Flags().Float64("hotspot-ratio", 0.7, "Fraction of the max cell count that marks a hotspot")

	viper.BindPFlag("grid_size", analyzeCmd.Flags().Lookup("grid-size"))
	viper.BindPFlag("hotspot_ratio", analyzeCmd.Flags().Lookup("hotspot-ratio"))

	rootCmd.AddCommand(analyzeCmd)
}
