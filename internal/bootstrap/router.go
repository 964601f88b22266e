package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/pdssp/planet-crs-registry/internal/api/http"
	"github.com/pdssp/planet-crs-registry/internal/api/http/middleware"
	"github.com/pdssp/planet-crs-registry/internal/wkts/gml"
	wktshttp "github.com/pdssp/planet-crs-registry/internal/wkts/http"
	"github.com/pdssp/planet-crs-registry/internal/wkts/repository"
	"github.com/pdssp/planet-crs-registry/internal/wkts/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Store       repository.RecordStore
	Query       *service.QueryService
	Ingest      *service.IngestService
	Gml         *gml.Store
	RateRPS     float64
	RateBurst   int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RateLimitMiddleware(dep.RateRPS, dep.RateBurst))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)

	handler := wktshttp.NewHandler(dep.Query, dep.Ingest, dep.Gml)
	handler.Register(r.Group("/ws"))
	handler.RegisterOGC(r.Group("/IAU"))

	return r
}
