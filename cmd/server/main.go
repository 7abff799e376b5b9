package main // Entry point package

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // .env bootstrap for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/venue-ordering/internal/config"
	"github.com/iliyamo/venue-ordering/internal/database"
	"github.com/iliyamo/venue-ordering/internal/handler"
	"github.com/iliyamo/venue-ordering/internal/queue"
	"github.com/iliyamo/venue-ordering/internal/repository"
	"github.com/iliyamo/venue-ordering/internal/router"
)

// sessionPurgeInterval controls how often expired session rows are swept.
// Validation rejects expired rows on its own; the sweep only keeps the
// table from growing without bound.
const sessionPurgeInterval = time.Hour

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // fatal on missing required vars

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the auth endpoints run unthrottled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; auth rate limiting disabled")
	}
	rlCfg := config.LoadRateLimitConfig()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	reservations := repository.NewReservationRepo(db)
	guests := repository.NewGuestRepo(db)
	items := repository.NewMenuItemRepo(db)
	orders := repository.NewOrderRepo(db)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, sessions, reservations),
		Admin:        handler.NewAdminHandler(cfg, users, sessions, log.Printf),
		Stats:        handler.NewStatsHandler(reservations, guests, items, orders),
		Menu:         handler.NewMenuHandler(items),
		Guests:       handler.NewGuestHandler(guests),
		Reservations: handler.NewReservationHandler(reservations, guests, orders),
		Orders:       handler.NewOrderHandler(items, orders, reservations),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, rdb, rlCfg, h, sessions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background workers: the audit trail consumer and the session sweep.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()
	go purgeSessions(ctx, sessions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Printf("server stopped")
}

// purgeSessions deletes expired session rows on a fixed interval until
// the context is cancelled.
func purgeSessions(ctx context.Context, sessions *repository.SessionRepo) {
	t := time.NewTicker(sessionPurgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				log.Printf("session purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d expired sessions", n)
			}
		}
	}
}
