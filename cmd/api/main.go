package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tindo.app/internal/auth"
	"tindo.app/internal/httpapi"
	"tindo.app/internal/obs"
	"tindo.app/internal/owner"
	"tindo.app/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Postgres when a DSN is configured, otherwise the in-memory store
	// (local development, tests, demos).
	var (
		db    *sql.DB
		store auth.Store
	)
	if dsn := os.Getenv("TINDO_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db = pgStore.DB()
		store = pgStore
	} else {
		log.Println("TINDO_PG_DSN not set, using in-memory store")
		store = auth.NewInMemory()
	}

	svc, err := auth.NewService(store, owner.NewOracle())
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.SeedCatalog(seedCtx); err != nil {
		cancelSeed()
		log.Fatalf("seed permission catalog: %v", err)
	}
	cancelSeed()

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, svc)

	addr := os.Getenv("TINDO_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting tindo-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	obs.SetReady(true)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
