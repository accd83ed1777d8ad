package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	assignmenthandler "medtransport/internal/assignment/handler"
	assignmentrepo "medtransport/internal/assignment/repository"
	assignmentservice "medtransport/internal/assignment/service"
	"medtransport/internal/common/auth"
	"medtransport/internal/common/config"
	"medtransport/internal/common/db"
	"medtransport/internal/common/logger"
	"medtransport/internal/common/metrics"
	"medtransport/internal/common/mq"
	"medtransport/internal/events"
	locationhandler "medtransport/internal/location/handler"
	locationrepo "medtransport/internal/location/repository"
	locationservice "medtransport/internal/location/service"
	reporthandler "medtransport/internal/report/handler"
	reportrepo "medtransport/internal/report/repository"
	reportservice "medtransport/internal/report/service"
	"medtransport/internal/tracking"
	userrepo "medtransport/internal/user/repository"
	vehiclehandler "medtransport/internal/vehicle/handler"
	vehiclerepo "medtransport/internal/vehicle/repository"
	vehicleservice "medtransport/internal/vehicle/service"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived dependency: the connection pool, the message
// broker, the websocket hub and the wired services.
type App struct {
	Config *config.Config

	DB  *db.Postgres
	RMQ *mq.RabbitMQ
	Hub *tracking.Hub

	Reports     *reportservice.ReportService
	Assignments *assignmentservice.AssignmentService
	Locations   *locationservice.LocationService
	Vehicles    *vehicleservice.VehicleService

	registry *prometheus.Registry
	log      zerolog.Logger
}

// New loads configuration, connects to Postgres, applies migrations and
// wires the full service graph. RabbitMQ is optional; when disabled the
// services skip event publishing.
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	auth.Init(cfg.JWT.Secret)

	a := &App{
		Config: cfg,
		Hub:    tracking.NewHub(),
		log:    logger.New("app"),
	}

	a.DB, err = db.NewPostgres(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	if err := a.DB.RunMigrations(ctx, "migrations"); err != nil {
		a.DB.Close()
		return nil, err
	}

	var pub events.Publisher
	if cfg.RabbitMQ.Enabled {
		a.RMQ, err = mq.NewRabbitMQ(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password)
		if err != nil {
			a.DB.Close()
			return nil, err
		}
		client, err := events.NewClient(a.RMQ, cfg.RabbitMQ.Exchange)
		if err != nil {
			a.Close()
			return nil, err
		}
		pub = client
	}

	a.registry = prometheus.NewRegistry()
	m, err := metrics.New(a.registry)
	if err != nil {
		a.Close()
		return nil, err
	}

	users := userrepo.NewUserRepository(a.DB.Pool)
	vehicles := vehiclerepo.NewVehicleRepository(a.DB.Pool)
	reports := reportrepo.NewReportRepository(a.DB.Pool)
	assignments := assignmentrepo.NewAssignmentRepository(a.DB.Pool)
	locations := locationrepo.NewLocationRepository(a.DB.Pool)

	a.Reports = reportservice.NewReportService(reports, pub, a.Hub, m)
	a.Assignments = assignmentservice.NewAssignmentService(assignments, m)
	a.Locations = locationservice.NewLocationService(locations, users, pub, a.Hub, m, cfg.Presence)
	a.Vehicles = vehicleservice.NewVehicleService(vehicles)

	return a, nil
}

// Router builds the HTTP surface: public token mint and metrics, and the
// authenticated API plus the dashboard websocket behind JWT middleware.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/auth/token", auth.TokenHandler())
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		reporthandler.NewReportHandler(a.Reports).Routes(r)
		assignmenthandler.NewAssignmentHandler(a.Assignments).Routes(r)
		locationhandler.NewLocationHandler(a.Locations).Routes(r)
		vehiclehandler.NewVehicleHandler(a.Vehicles).Routes(r)

		r.Get("/ws/tracking", tracking.Handler(a.Hub))
	})

	return r
}

// Serve runs the HTTP server until ctx is canceled or SIGINT/SIGTERM
// arrives, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.HTTP.Port),
		Handler:      a.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Int("port", a.Config.HTTP.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case sig := <-stop:
		a.log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.RMQ != nil {
		a.RMQ.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
