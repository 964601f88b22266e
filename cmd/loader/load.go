package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdssp/planet-crs-registry/config"
	"github.com/pdssp/planet-crs-registry/internal/bootstrap"
	"github.com/pdssp/planet-crs-registry/internal/wkts/service"
)

// RunLoad ingests a WKT corpus file into the configured record store
// and prints the per-entry outcome.
func RunLoad(args []string) {
	if len(args) < 1 {
		log.Fatal("usage: loader load <corpus.wkts>")
	}
	path := args[0]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] operation=config_load err=%v", err)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("[error] operation=corpus_read path=%s err=%v", path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("[error] operation=store_open driver=%s err=%v", cfg.Database.Driver, err)
	}
	defer store.Close()

	ingest := service.NewIngestService(store)
	report, err := ingest.IngestText(ctx, string(text))
	if report != nil {
		for _, item := range report.Items {
			if item.Status == service.StatusFailed {
				log.Printf("[warn] operation=load index=%d err=%s", item.Index, item.Error)
			}
		}
		log.Printf("[info] operation=load path=%s total=%d created=%d failed=%d",
			path, report.Total, report.Created, report.Failed)
	}
	if err != nil {
		log.Fatalf("[error] operation=load err=%v", err)
	}
}
