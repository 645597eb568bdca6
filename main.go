package main

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"arena-server/game"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("reading .env")
	}
	cfg, err := LoadConfig(os.Args[1:], os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	setupLogging(cfg)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	obstacles := game.GenerateObstacles(rng, cfg.Obstacles)
	if len(obstacles) < cfg.Obstacles {
		log.WithFields(log.Fields{
			"placed":    len(obstacles),
			"requested": cfg.Obstacles,
		}).Warn("obstacle placement gave up early")
	}
	engine := game.NewEngine(rng, obstacles)

	var db *DB
	if cfg.AnalyticsDB != "" {
		db, err = OpenDB(cfg.AnalyticsDB)
		if err != nil {
			log.Fatalf("analytics db: %v", err)
		}
		defer db.Close()
	}
	analytics := NewAnalytics(db)

	hub := NewHub(engine, HubConfig{
		TickRate:      cfg.TickRate,
		MaxConns:      cfg.MaxConns,
		MaxConnsPerIP: cfg.MaxConnsPerIP,
	}, analytics)

	tcpLn, err := net.Listen("tcp", cfg.TCPAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.TCPAddr, err)
	}

	var httpSrv *http.Server
	var httpLn net.Listener
	if cfg.HTTPAddr != "" {
		httpLn, err = net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			log.Fatalf("listen %s: %v", cfg.HTTPAddr, err)
		}
		httpSrv = &http.Server{Handler: SetupRoutes(hub), ReadHeaderTimeout: 5 * time.Second}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)
	go func() {
		if err := hub.ServeTCP(tcpLn); err != nil {
			log.WithError(err).Error("tcp listener stopped")
		}
	}()
	if httpSrv != nil {
		go func() {
			if err := httpSrv.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("http server stopped")
			}
		}()
	}

	log.WithFields(log.Fields{
		"tcp":       cfg.TCPAddr,
		"http":      cfg.HTTPAddr,
		"seed":      seed,
		"obstacles": len(obstacles),
	}).Info("server started")

	<-ctx.Done()
	log.Info("shutting down")

	tcpLn.Close()
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		httpSrv.Shutdown(shutdownCtx)
		cancel()
	}
	hub.Close()
	analytics.Stop()
}
