package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/geosim/trafficdatasim/internal/analysis"
	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *models.TrafficDataset {
	return &models.TrafficDataset{
		Drivers: []models.TraceRecord{
			{DriverID: 0, Latitude: 40.0, Longitude: -74.0, Timestamp: "2024-01-01 07:00:00"},
			{DriverID: 0, Latitude: 40.0, Longitude: -74.0, Timestamp: "2024-01-01 07:06:00"},
			{DriverID: 1, Latitude: 40.0, Longitude: -74.0, Timestamp: "2024-01-01 07:00:00"},
		},
		Metadata: models.DatasetMetadata{NumDrivers: 2, TotalPoints: 3},
	}
}

func testAnalysis() AnalysisFunc {
	agg := &analysis.Aggregator{GridSize: 10, HotspotRatio: 0.7}
	return agg.Aggregate
}

func TestApprovalGateReleasesResult(t *testing.T) {
	dom := New(nil)
	datasetID := dom.UploadDataset(testDataset())

	request, err := dom.SubmitRequest(datasetID, testAnalysis())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, request.Status)

	// No result before the owner approves.
	_, err = dom.Result(request.ID)
	assert.ErrorIs(t, err, ErrNotApproved)

	require.NoError(t, dom.Approve(request.ID))

	report, err := dom.Result(request.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalGpsPoints)
	require.Len(t, report.Hotspots, 1)
	assert.Equal(t, 3.0, report.Hotspots[0].CongestionLevel)
}

func TestDeniedRequestNeverYieldsResult(t *testing.T) {
	dom := New(nil)
	datasetID := dom.UploadDataset(testDataset())

	request, err := dom.SubmitRequest(datasetID, testAnalysis())
	require.NoError(t, err)

	require.NoError(t, dom.Deny(request.ID))

	_, err = dom.Result(request.ID)
	assert.ErrorIs(t, err, ErrNotApproved)

	// A decided request cannot be flipped.
	assert.ErrorIs(t, dom.Approve(request.ID), ErrAlreadyDecided)
}

func TestApproveIsIdempotentGuarded(t *testing.T) {
	dom := New(nil)
	datasetID := dom.UploadDataset(testDataset())

	request, err := dom.SubmitRequest(datasetID, testAnalysis())
	require.NoError(t, err)

	require.NoError(t, dom.Approve(request.ID))
	assert.ErrorIs(t, dom.Approve(request.ID), ErrAlreadyDecided)
}

func TestSubmitRequestUnknownDataset(t *testing.T) {
	dom := New(nil)
	_, err := dom.SubmitRequest("missing", testAnalysis())
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestResultUnknownRequest(t *testing.T) {
	dom := New(nil)
	_, err := dom.Result("missing")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestUploadAssignsDatasetID(t *testing.T) {
	dom := New(nil)
	ds := testDataset()
	id := dom.UploadDataset(ds)
	assert.NotEmpty(t, id)
	assert.Contains(t, dom.DatasetIDs(), id)

	// A dataset arriving with an ID keeps it.
	withID := testDataset()
	withID.ID = "fixed"
	assert.Equal(t, "fixed", dom.UploadDataset(withID))
}

func TestPollingRequestWhileDecisionLands(t *testing.T) {
	dom := New(nil)
	datasetID := dom.UploadDataset(testDataset())

	request, err := dom.SubmitRequest(datasetID, testAnalysis())
	require.NoError(t, err)

	// A researcher polling and encoding the request state must not race
	// with the owner's decision; Request hands out snapshots.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			snapshot, err := dom.Request(request.ID)
			assert.NoError(t, err)
			_, err = json.Marshal(snapshot)
			assert.NoError(t, err)
		}
	}()

	require.NoError(t, dom.Approve(request.ID))
	<-done

	final, err := dom.Request(request.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, final.Status)
	// The pre-decision snapshot is unaffected by the decision.
	assert.Equal(t, StatusPending, request.Status)
}

func TestAnalysisFailureSurfacesOnApprove(t *testing.T) {
	dom := New(nil)
	ds := testDataset()
	ds.Drivers[0].Latitude = math.NaN()
	datasetID := dom.UploadDataset(ds)

	request, err := dom.SubmitRequest(datasetID, testAnalysis())
	require.NoError(t, err)

	assert.Error(t, dom.Approve(request.ID))
}
