package domain

import (
	"context"
	"fmt"
	"net/http"

	"github.com/geosim/trafficdatasim/internal/analysis"
	"github.com/geosim/trafficdatasim/internal/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server exposes the domain workflow over HTTP: upload datasets, submit
// congestion-analysis requests, approve or deny them as the data owner,
// and fetch aggregate results as the researcher.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	domain     *Domain
	aggregator *analysis.Aggregator
	logger     *logrus.Logger
	config     *models.ServerConfig
}

func NewServer(config *models.Config, dom *Domain, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Server{
		router:     mux.NewRouter(),
		domain:     dom,
		aggregator: analysis.NewAggregator(config),
		logger:     logger,
		config:     &config.Server,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/datasets", s.handleUploadDataset).Methods(http.MethodPost)
	api.HandleFunc("/datasets", s.handleListDatasets).Methods(http.MethodGet)
	api.HandleFunc("/requests", s.handleSubmitRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}", s.handleGetRequest).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}/approve", s.handleApproveRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/deny", s.handleDenyRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/result", s.handleGetResult).Methods(http.MethodGet)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("handling request")
		next.ServeHTTP(w, r)
	})
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("starting domain server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Stop()
	}
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.logger.Info("shutting down domain server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
