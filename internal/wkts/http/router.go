package http

import "github.com/gin-gonic/gin"

// Register mounts the JSON web-service routes on the given group,
// conventionally /ws.
func (h *Handler) Register(ws *gin.RouterGroup) {
	ws.GET("/wkts", h.listWkts)
	ws.POST("/wkts", h.ingestWkts)
	ws.GET("/wkts/count", h.countWkts)
	ws.GET("/wkts/:wkt_id", h.getWkt)

	ws.GET("/versions", h.listVersions)
	ws.GET("/versions/:version", h.listByVersion)
	ws.GET("/versions/:version/count", h.countByVersion)
	ws.GET("/versions/:version/:wkt_id", h.getWktByVersion)

	ws.GET("/solar_bodies", h.listSolarBodies)
	ws.GET("/solar_bodies/count", h.countSolarBodies)
	ws.GET("/solar_bodies/:solar_body", h.listBySolarBody)
	ws.GET("/solar_bodies/:solar_body/count", h.countBySolarBody)
	ws.GET("/solar_bodies/:solar_body/:wkt_id", h.getWktBySolarBody)

	ws.GET("/search", h.search)
	ws.GET("/search/count", h.searchCount)

	ws.GET("/crs/:namespace", h.lookup)
	ws.GET("/crs/:namespace/:version", h.lookup)
	ws.GET("/crs/:namespace/:version/:code", h.lookup)
}

// RegisterOGC mounts the OGC name-resolution bridge on the given group,
// conventionally /IAU.
func (h *Handler) RegisterOGC(iau *gin.RouterGroup) {
	iau.GET("", h.ogcVersions)
	iau.GET("/:version", h.ogcIdentifiers)
	iau.GET("/:version/:code", h.ogcGml)
}
