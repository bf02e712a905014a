package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/evrange/api/estimate"
	"github.com/kilianp07/evrange/api/profiles"
	"github.com/kilianp07/evrange/api/route"
	"github.com/kilianp07/evrange/config"
	"github.com/kilianp07/evrange/core/form"
	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
	coremon "github.com/kilianp07/evrange/core/monitoring"
	"github.com/kilianp07/evrange/core/routefetch"
	"github.com/kilianp07/evrange/infra/auth"
	"github.com/kilianp07/evrange/infra/history"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/infra/metrics"
	"github.com/kilianp07/evrange/infra/monitoring"
	"github.com/kilianp07/evrange/infra/mqtt"
	"github.com/kilianp07/evrange/infra/nominatim"
	"github.com/kilianp07/evrange/infra/osrm"
	"github.com/kilianp07/evrange/internal/eventbus"
)

const shutdownTimeout = 5 * time.Second

// Service wires the form, the route orchestrator and their adapters.
type Service struct {
	Form         *form.Form
	Orchestrator *routefetch.Orchestrator

	cfg       *config.Config
	sink      coremetrics.MetricsSink
	bus       *eventbus.TypedBus[routefetch.Status]
	publisher *mqtt.StatusPublisher
	history   *history.SQLiteStore
	log       logger.Logger
}

// New creates a Service from the configuration. Monitoring and the metrics
// sinks are set up here; nothing listens until Run.
func New(cfg *config.Config) (*Service, error) {
	logger.Configure(cfg.Logging)
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	set, err := model.NewProfileSet(model.DefaultPresets())
	if err != nil {
		return nil, fmt.Errorf("profiles: %w", err)
	}

	bus := eventbus.NewTyped[routefetch.Status]()
	ctx := context.Background()
	orch := routefetch.NewOrchestrator(
		nominatim.NewClient(cfg.Geocoder, auth.HTTPClient(ctx, cfg.Geocoder.Auth, nil)),
		osrm.NewClient(cfg.Router, auth.HTTPClient(ctx, cfg.Router.Auth, nil)),
		sink,
		bus,
		logger.New("routefetch"),
	)

	svc := &Service{
		Form:         form.New(set, sink, logger.New("form")),
		Orchestrator: orch,
		cfg:          cfg,
		sink:         sink,
		bus:          bus,
		log:          logg,
	}
	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.Max())
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		svc.history = store
		orch.SetHistory(store)
	}
	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewStatusPublisher(cfg.MQTT)
		if err != nil {
			_ = svc.closeHistory()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// History returns the fetch history, nil when disabled.
func (s *Service) History() routefetch.History {
	if s.history == nil {
		return nil
	}
	return s.history
}

// Handler returns the HTTP API routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/estimate", estimate.NewEstimateHandler(s.Form))
	mux.Handle("/api/validate", estimate.NewValidateHandler(s.Form))
	mux.Handle("/api/chart", estimate.NewChartHandler(s.Form))
	mux.Handle("/api/route", route.NewFetchHandler(s.Orchestrator, s.Form))
	mux.Handle("/api/route/status", route.NewStatusHandler(s.Orchestrator))
	mux.Handle("/api/route/history", route.NewHistoryHandler(s.History()))
	mux.Handle("/api/profiles", profiles.NewListHandler(s.Form))
	mux.Handle("/api/profiles/select", profiles.NewSelectHandler(s.Form))
	mux.Handle("/api/profiles/reset", profiles.NewResetHandler(s.Form))
	mux.Handle("/api/form", profiles.NewFormHandler(s.Form))
	return mux
}

// StartBackground starts the status publisher, when configured, and returns
// once it is running. It stops with ctx.
func (s *Service) StartBackground(ctx context.Context, wg *sync.WaitGroup) {
	if s.publisher == nil {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.publisher.Run(ctx, s.bus)
	}()
}

// Run serves the API, and /metrics when a prometheus sink is configured,
// until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	s.StartBackground(ctx, &wg)
	if s.cfg.Metrics.HasSink("prometheus") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.API.Address, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving api on %s", s.cfg.API.Address)
	err := srv.ListenAndServe()
	cancel()
	wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the MQTT connection, the metrics clients, the history
// database and the log file, and flushes pending error reports.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.bus.Close()
	coremon.Flush(2 * time.Second)
	return errors.Join(s.closeHistory(), logger.CloseFile())
}

func (s *Service) closeHistory() error {
	if s.history == nil {
		return nil
	}
	return s.history.Close()
}
