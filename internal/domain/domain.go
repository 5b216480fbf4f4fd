package domain

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/google/uuid"
	"github.com/lucsky/cuid"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrRequestNotFound = errors.New("analysis request not found")
	ErrAlreadyDecided  = errors.New("analysis request already decided")
	ErrNotApproved     = errors.New("analysis request has not been approved")
)

// AnalysisFunc is the computation a researcher submits against a hosted
// dataset. It sees bare coordinates and must return aggregates only.
type AnalysisFunc func(points []orb.Point) (*models.CongestionReport, error)

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusDenied    RequestStatus = "denied"
	StatusCompleted RequestStatus = "completed"
)

// AnalysisRequest tracks one submitted computation through the approval
// gate. The result is only populated once the data owner approves.
type AnalysisRequest struct {
	ID          string        `json:"id"`
	DatasetID   string        `json:"dataset_id"`
	Status      RequestStatus `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
	DecidedAt   *time.Time    `json:"decided_at,omitempty"`

	fn     AnalysisFunc
	result *models.CongestionReport
}

// Domain simulates a secure-computation host: datasets are uploaded by a
// data owner, researchers submit analysis requests against them, and only
// after owner approval does the computation run, exposing aggregate
// results and never the raw samples.
type Domain struct {
	mu       sync.RWMutex
	log      *logrus.Logger
	datasets map[string]*models.TrafficDataset
	requests map[string]*AnalysisRequest
}

func New(log *logrus.Logger) *Domain {
	if log == nil {
		log = logrus.New()
	}
	return &Domain{
		log:      log,
		datasets: make(map[string]*models.TrafficDataset),
		requests: make(map[string]*AnalysisRequest),
	}
}

// UploadDataset stores a dataset and returns its ID, assigning one if the
// dataset arrived without.
func (d *Domain) UploadDataset(dataset *models.TrafficDataset) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if dataset.ID == "" {
		dataset.ID = cuid.New()
	}
	d.datasets[dataset.ID] = dataset

	d.log.WithFields(logrus.Fields{
		"dataset_id":   dataset.ID,
		"total_points": dataset.Metadata.TotalPoints,
	}).Info("dataset uploaded to domain")

	return dataset.ID
}

// DatasetIDs lists the assets a researcher may reference in a request.
// Only identifiers leave the domain, never sample data.
func (d *Domain) DatasetIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.datasets))
	for id := range d.datasets {
		ids = append(ids, id)
	}
	return ids
}

// SubmitRequest registers an analysis function against a hosted dataset.
// The request starts pending and runs nothing until approved. The
// returned request is a snapshot; poll Request for the current state.
func (d *Domain) SubmitRequest(datasetID string, fn AnalysisFunc) (AnalysisRequest, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.datasets[datasetID]; !ok {
		return AnalysisRequest{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, datasetID)
	}

	request := &AnalysisRequest{
		ID:          uuid.NewString(),
		DatasetID:   datasetID,
		Status:      StatusPending,
		SubmittedAt: time.Now().UTC(),
		fn:          fn,
	}
	d.requests[request.ID] = request

	d.log.WithFields(logrus.Fields{
		"request_id": request.ID,
		"dataset_id": datasetID,
	}).Info("analysis request submitted, awaiting owner approval")

	return *request, nil
}

// Approve runs the requested computation against the referenced dataset.
// The raw samples never leave the domain; only the aggregate result is
// retained for the researcher.
func (d *Domain) Approve(requestID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	request, ok := d.requests[requestID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	if request.Status != StatusPending {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyDecided, requestID, request.Status)
	}

	dataset, ok := d.datasets[request.DatasetID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, request.DatasetID)
	}

	result, err := request.fn(dataset.Points())
	if err != nil {
		return fmt.Errorf("analysis execution failed: %w", err)
	}

	now := time.Now().UTC()
	request.Status = StatusCompleted
	request.DecidedAt = &now
	request.result = result

	d.log.WithField("request_id", requestID).Info("analysis request approved and executed")
	return nil
}

// Deny rejects a pending request; its computation never runs.
func (d *Domain) Deny(requestID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	request, ok := d.requests[requestID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	if request.Status != StatusPending {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyDecided, requestID, request.Status)
	}

	now := time.Now().UTC()
	request.Status = StatusDenied
	request.DecidedAt = &now

	d.log.WithField("request_id", requestID).Info("analysis request denied")
	return nil
}

// Request returns a snapshot of the current state of a request. Copies
// are taken under the lock so callers can read or encode them while a
// decision lands concurrently.
func (d *Domain) Request(requestID string) (AnalysisRequest, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	request, ok := d.requests[requestID]
	if !ok {
		return AnalysisRequest{}, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	return *request, nil
}

// Result returns the aggregate report of a completed request. Pending and
// denied requests yield no result.
func (d *Domain) Result(requestID string) (*models.CongestionReport, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	request, ok := d.requests[requestID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	if request.Status != StatusCompleted {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotApproved, requestID, request.Status)
	}
	return request.result, nil
}
