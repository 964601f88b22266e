package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/pdssp/planet-crs-registry/config"
	"github.com/pdssp/planet-crs-registry/internal/bootstrap"
	"github.com/pdssp/planet-crs-registry/internal/wkts/cache"
	"github.com/pdssp/planet-crs-registry/internal/wkts/gml"
	"github.com/pdssp/planet-crs-registry/internal/wkts/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[error] operation=config_load err=%v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	store, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("[error] operation=store_open driver=%s err=%v", cfg.Database.Driver, err)
	}
	defer store.Close()
	log.Printf("[info] operation=store_open driver=%s", cfg.Database.Driver)

	gmlStore := gml.NewStore(cfg.Gml.Dir)
	if cfg.Gml.RefreshSchedule != "" {
		cr, err := gmlStore.ScheduleRefresh(cfg.Gml.RefreshSchedule)
		if err != nil {
			log.Fatalf("[error] operation=gml_schedule schedule=%s err=%v", cfg.Gml.RefreshSchedule, err)
		}
		defer cr.Stop()
	}

	var recordCache *cache.RecordCache
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[warn] operation=redis_ping addr=%s err=%v", cfg.Cache.RedisAddr, err)
		} else {
			recordCache = cache.New(client, cfg.Cache.TTL)
			log.Printf("[info] operation=cache_enabled addr=%s ttl=%s", cfg.Cache.RedisAddr, cfg.Cache.TTL)
		}
	}

	query := service.NewQueryService(store, recordCache, cfg.Query.MaxPageSize)
	ingest := service.NewIngestService(store)

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "planet-crs-registry",
		Version:     cfg.App.Version,
		Store:       store,
		Query:       query,
		Ingest:      ingest,
		Gml:         gmlStore,
		RateRPS:     cfg.Server.RateRPS,
		RateBurst:   cfg.Server.RateBurst,
	})

	log.Printf("[info] operation=listen port=%s env=%s", cfg.Server.Port, cfg.App.Environment)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("[error] operation=listen err=%v", err)
	}
}
