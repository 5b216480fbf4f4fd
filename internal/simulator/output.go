package simulator

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/geosim/trafficdatasim/internal/cloudwriter"
	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/geosim/trafficdatasim/internal/repositories"
	"github.com/geosim/trafficdatasim/internal/repositories/postgres"
	producers "github.com/geosim/trafficdatasim/internal/simulator/producers"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

type OutputDestination interface {
	Close() error
}

// SampleWriter receives trace records one at a time, in global
// chronological order.
type SampleWriter interface {
	OutputDestination
	WriteSample(rec models.TraceRecord) error
}

// DatasetWriter persists the pooled dataset with its metadata in one shot.
type DatasetWriter interface {
	OutputDestination
	WriteDataset(dataset *models.TrafficDataset) error
}

// DriverWriter persists the driver roster alongside the samples.
type DriverWriter interface {
	WriteDrivers(drivers []models.Driver) error
}

type ConsoleOutput struct {
	topic string
}

func (c *ConsoleOutput) WriteSample(rec models.TraceRecord) error {
	msg, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	output := fmt.Sprintf("[%s] %s\n", c.topic, string(msg))

	_, err = os.Stdout.Write([]byte(output))
	if err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	// Try to sync, but don't return an error if it fails
	_ = os.Stdout.Sync()

	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// JSONOutput writes the dataset as a single JSON document, matching the
// layout generate scripts and the analyze command agree on.
type JSONOutput struct {
	path string
}

func NewJSONOutput(path string) *JSONOutput {
	return &JSONOutput{path: path}
}

func (j *JSONOutput) WriteDataset(dataset *models.TrafficDataset) error {
	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(j.path, data, 0o644)
}

func (j *JSONOutput) Close() error { return nil }

// CloudJSONOutput uploads the dataset document to object storage.
type CloudJSONOutput struct {
	factory cloudwriter.CloudWriterFactory
	bucket  string
	folder  string
}

func NewCloudJSONOutput(factory cloudwriter.CloudWriterFactory, bucket, folder string) *CloudJSONOutput {
	return &CloudJSONOutput{factory: factory, bucket: bucket, folder: folder}
}

func (c *CloudJSONOutput) WriteDataset(dataset *models.TrafficDataset) error {
	objectPath := filepath.Join(c.folder, fmt.Sprintf("%s.json", dataset.ID))
	w, err := c.factory.NewWriter(c.bucket, objectPath)
	if err != nil {
		return fmt.Errorf("failed to create cloud writer: %w", err)
	}
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Close()
}

func (c *CloudJSONOutput) Close() error { return nil }

type CSVOutput struct {
	file   *os.File
	writer *csv.Writer
}

func NewCSVOutput(path string) (*CSVOutput, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(file)
	if err := w.Write([]string{"driver_id", "latitude", "longitude", "timestamp"}); err != nil {
		file.Close()
		return nil, err
	}
	return &CSVOutput{file: file, writer: w}, nil
}

func (c *CSVOutput) WriteSample(rec models.TraceRecord) error {
	row := []string{
		strconv.FormatInt(rec.DriverID, 10),
		strconv.FormatFloat(rec.Latitude, 'f', -1, 64),
		strconv.FormatFloat(rec.Longitude, 'f', -1, 64),
		rec.Timestamp,
	}
	if err := c.writer.Write(row); err != nil {
		return err
	}
	return nil
}

func (c *CSVOutput) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}

type ParquetOutput struct {
	pw *writer.ParquetWriter
}

func NewParquetOutput(path string) (*ParquetOutput, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, err
		}
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(models.TraceRecord), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	return &ParquetOutput{pw: pw}, nil
}

func (p *ParquetOutput) WriteSample(rec models.TraceRecord) error {
	if err := p.pw.Write(rec); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func (p *ParquetOutput) Close() error {
	return p.pw.WriteStop()
}

type KafkaOutput struct {
	producer *producers.SaramaProducer
	topic    string
}

func (k *KafkaOutput) WriteSample(rec models.TraceRecord) error {
	msg, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return k.producer.WriteMessage(k.topic, msg)
}

func (k *KafkaOutput) Close() error {
	return k.producer.Close()
}

// PostgresOutput buffers trace records and bulk-inserts them on Close.
type PostgresOutput struct {
	repo    repositories.TraceRepository
	records []models.TraceRecord
}

func NewPostgresOutput(repo repositories.TraceRepository) *PostgresOutput {
	return &PostgresOutput{repo: repo}
}

func (p *PostgresOutput) WriteSample(rec models.TraceRecord) error {
	p.records = append(p.records, rec)
	return nil
}

func (p *PostgresOutput) WriteDrivers(drivers []models.Driver) error {
	return p.repo.BulkCreateDrivers(context.Background(), drivers)
}

func (p *PostgresOutput) Close() error {
	defer p.repo.Close()
	if len(p.records) == 0 {
		return nil
	}
	return p.repo.BulkCreateSamples(context.Background(), p.records)
}

func (s *Simulator) determineOutputDestination() (OutputDestination, error) {
	if s.Config.KafkaEnabled {
		producer, err := producers.NewSaramaProducer(s.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
		}
		return &KafkaOutput{producer: producer, topic: s.Config.KafkaTopic}, nil
	}

	if s.Config.OutputPath != "" {
		switch s.Config.OutputFormat {
		case "json":
			if s.Config.OutputDestination == "s3" {
				factory, err := cloudwriter.NewS3WriterFactory(s.Config.CloudStorage.Region)
				if err != nil {
					return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
				}
				return NewCloudJSONOutput(factory, s.Config.CloudStorage.BucketName, s.Config.OutputFolder), nil
			}
			return NewJSONOutput(s.Config.OutputPath), nil
		case "csv":
			return NewCSVOutput(s.Config.OutputPath)
		case "parquet":
			return NewParquetOutput(s.Config.OutputPath)
		case "postgres":
			repo, err := postgres.NewTraceRepository(context.Background(), &s.Config.Database)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to postgres: %w", err)
			}
			return NewPostgresOutput(repo), nil
		default:
			return nil, fmt.Errorf("unsupported output format: %s", s.Config.OutputFormat)
		}
	}

	return &ConsoleOutput{topic: s.Config.KafkaTopic}, nil
}
