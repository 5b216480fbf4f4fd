package domain

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/gorilla/mux"
)

type submitRequestBody struct {
	DatasetID string `json:"dataset_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	var dataset models.TrafficDataset
	if err := json.NewDecoder(r.Body).Decode(&dataset); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	id := s.domain.UploadDataset(&dataset)
	s.writeJSON(w, http.StatusCreated, map[string]string{"dataset_id": id})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"datasets": s.domain.DatasetIDs()})
}

func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	// The only computation this domain registers is the grid congestion
	// analysis; its output is aggregate-only by construction.
	request, err := s.domain.SubmitRequest(body.DatasetID, s.aggregator.Aggregate)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, request)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	request, err := s.domain.Request(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, request)
}

func (s *Server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.domain.Approve(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": string(StatusCompleted)})
}

func (s *Server) handleDenyRequest(w http.ResponseWriter, r *http.Request) {
	if err := s.domain.Deny(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": string(StatusDenied)})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	report, err := s.domain.Result(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrDatasetNotFound), errors.Is(err, ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyDecided), errors.Is(err, ErrNotApproved):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.WithError(err).Warn("request failed")
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
