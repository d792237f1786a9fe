package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	alarmhandler "hydration/internal/alarm/handler"
	alarmservice "hydration/internal/alarm/service"
	alarmstore "hydration/internal/alarm/store"
	"hydration/internal/events"
	intakecache "hydration/internal/intake/cache"
	intakehandler "hydration/internal/intake/handler"
	intakeservice "hydration/internal/intake/service"
	intakestore "hydration/internal/intake/store"
	jwttoken "hydration/internal/jwt_token"
	"hydration/internal/platform/config"
	"hydration/internal/platform/httpserver"
	"hydration/internal/platform/logger"
	"hydration/internal/platform/messages"
	"hydration/internal/platform/metrics"
	"hydration/internal/platform/middleware"
	"hydration/internal/platform/postgres"
	"hydration/internal/platform/redis"
	"hydration/internal/policy"
	profilehandler "hydration/internal/profile/handler"
	profileservice "hydration/internal/profile/service"
	profilestore "hydration/internal/profile/store"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/circuit"
	"hydration/pkg/platform/httputil"
	"hydration/pkg/platform/middleware/requesttime"
	"hydration/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// backends holds the optional infrastructure selected by configuration.
type backends struct {
	db    *sql.DB
	redis *redis.Client
	sink  events.Sink
	nats  *events.NATSSink
}

func (b *backends) close() {
	if b.nats != nil {
		_ = b.nats.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*backends, error) {
	b := &backends{}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		b.db = db
		log.Info("using postgres stores")
	} else {
		log.Info("DATABASE_URL not set, using in-memory stores")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		b.close()
		return nil, err
	}
	b.redis = rc

	nc, err := events.ConnectNATS(cfg.NATS)
	if err != nil {
		b.close()
		return nil, err
	}
	if nc != nil {
		b.nats = nc
		b.sink = nc
	} else {
		log.Info("NATS_URL not set, events are kept in memory")
		b.sink = events.NewInMemorySink()
	}
	return b, nil
}

// profileGoals defers the profile lookup so the intake and profile services
// can be wired to each other.
type profileGoals struct {
	profiles *profileservice.Service
}

func (g *profileGoals) DailyGoal(ctx context.Context, userID id.UserID) (int, error) {
	return g.profiles.DailyGoal(ctx, userID)
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	holder, err := policy.NewHolder(cfg.PolicyFile, log)
	if err != nil {
		return err
	}
	m := metrics.New(prometheus.DefaultRegisterer)

	infra, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close()

	publisher := events.NewPublisher(cfg.NATS.SubjectPrefix, 0, log, m)
	worker := events.NewWorker(publisher, infra.sink)

	var (
		profileStore profileservice.Store = profilestore.NewInMemoryStore()
		alarmStore   alarmservice.Store   = alarmstore.NewInMemoryStore()
		intakeStore  intakeservice.Store  = intakestore.NewInMemoryStore()
		txRunner     tx.Runner            = &tx.LockRunner{}
	)
	if infra.db != nil {
		profileStore = profilestore.NewPostgresStore(infra.db)
		alarmStore = alarmstore.NewPostgresStore(infra.db)
		intakeStore = intakestore.NewPostgresStore(infra.db)
		txRunner = newEraseTx(infra.db)
	}

	intakeOpts := []intakeservice.Option{
		intakeservice.WithEvents(publisher),
		intakeservice.WithMetrics(m),
	}
	if infra.redis != nil {
		summaries := intakecache.NewGuardedCache(
			intakecache.NewRedisSummaryCache(infra.redis, cfg.Redis.SummaryTTL),
			circuit.New("summary-cache"),
			log,
		)
		intakeOpts = append(intakeOpts, intakeservice.WithSummaryCache(summaries))
	}

	goals := &profileGoals{}
	alarmSvc := alarmservice.New(alarmStore, holder, publisher, log)
	intakeSvc := intakeservice.New(intakeStore, goals, holder, log, intakeOpts...)
	profileSvc := profileservice.New(profileStore, holder, log,
		profileservice.WithErasers(alarmSvc, intakeSvc),
		profileservice.WithEvents(publisher),
		profileservice.WithMetrics(m),
		profileservice.WithTxRunner(txRunner),
	)
	goals.profiles = profileSvc

	verifier := jwttoken.NewJWTServiceAdapter(
		jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience),
	)
	catalog := messages.English()

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(log, m))

	r.Get("/healthz", healthHandler(infra))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJSON)
		r.Use(middleware.RequireAuth(verifier, profileSvc, log))
		profilehandler.New(profileSvc, catalog, m, log).Register(r)
		alarmhandler.New(alarmSvc, catalog, m, log).Register(r)
		intakehandler.New(intakeSvc, catalog, m, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting hydration api", "addr", cfg.Addr, "env", cfg.Environment)
		defer log.Info("server stopped")
		return httpserver.Run(gctx, srv, shutdownTimeout)
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		reloadPolicyOnHangup(gctx, holder, log)
		return nil
	})
	return g.Wait()
}

// reloadPolicyOnHangup swaps in a fresh policy snapshot on SIGHUP. In-flight
// validations keep the snapshot they started with.
func reloadPolicyOnHangup(ctx context.Context, holder *policy.Holder, log *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := holder.Reload(); err != nil {
				log.Warn("policy reload rejected", "error", err)
			}
		}
	}
}

func healthHandler(infra *backends) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if infra.db != nil {
			status["postgres"] = "ok"
			if err := infra.db.PingContext(ctx); err != nil {
				status["postgres"] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		if infra.redis != nil {
			status["redis"] = "ok"
			if err := infra.redis.Health(ctx); err != nil {
				// The summary cache is optional; requests still succeed.
				status["redis"] = "unavailable"
				status["status"] = "degraded"
			}
		}
		httputil.WriteJSON(w, code, status)
	}
}
