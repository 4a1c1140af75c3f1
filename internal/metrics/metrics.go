package metrics

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Counter metrics
	IncrementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phrasecounter_increments_total",
			Help: "Total count changes applied to phrases",
		},
		[]string{"source", "direction"},
	)

	HotkeyPressesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phrasecounter_hotkey_presses_total",
			Help: "Key presses routed to the hotkey dispatcher",
		},
		[]string{"matched"},
	)

	PhrasesTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "phrasecounter_phrases",
			Help: "Number of phrases currently tracked",
		},
	)

	// Session metrics
	SessionsSavedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "phrasecounter_sessions_saved_total",
			Help: "Sessions archived to history",
		},
	)

	SessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "phrasecounter_session_duration_seconds",
			Help:    "Length of saved sessions",
			Buckets: []float64{30, 60, 300, 900, 1800, 3600, 7200},
		},
	)

	StorageErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phrasecounter_storage_errors_total",
			Help: "Failed persistence writes",
		},
		[]string{"collection"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		IncrementsTotal,
		HotkeyPressesTotal,
		PhrasesTracked,
		SessionsSavedTotal,
		SessionDuration,
		StorageErrorsTotal,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting metrics server")
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
