package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
	"github.com/pdssp/planet-crs-registry/internal/wkts/gml"
	"github.com/pdssp/planet-crs-registry/internal/wkts/parser"
	"github.com/pdssp/planet-crs-registry/internal/wkts/repository"
	"github.com/pdssp/planet-crs-registry/internal/wkts/service"
)

const ogcCrsBaseURL = "http://www.opengis.net/def/crs/IAU"

// Handler exposes the registry over HTTP.
type Handler struct {
	query  *service.QueryService
	ingest *service.IngestService
	gml    *gml.Store
}

func NewHandler(query *service.QueryService, ingest *service.IngestService, gmlStore *gml.Store) *Handler {
	return &Handler{query: query, ingest: ingest, gml: gmlStore}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrGmlNotAvailable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidPageSize),
		errors.Is(err, domain.ErrInvalidKeyComponent),
		errors.Is(err, domain.ErrMalformedIdentifier),
		errors.Is(err, domain.ErrAmbiguousIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("[error] operation=http_request path=%s err=%v", c.FullPath(), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrStoreUnavailable.Error()})
	}
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be an integer", name)})
		return 0, false
	}
	return v, true
}

// pageParams reads page/page_size from the query string. Missing values
// stay zero so the query service applies its defaults.
func pageParams(c *gin.Context) (domain.PageRequest, bool) {
	page, ok := intQuery(c, "page")
	if !ok {
		return domain.PageRequest{}, false
	}
	size, ok := intQuery(c, "page_size")
	if !ok {
		return domain.PageRequest{}, false
	}
	return domain.PageRequest{Page: page, PageSize: size}, true
}

func (h *Handler) listWkts(c *gin.Context) {
	page, ok := pageParams(c)
	if !ok {
		return
	}
	res, err := h.query.ListRecords(c.Request.Context(), repository.Filter{}, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) countWkts(c *gin.Context) {
	total, err := h.query.CountRecords(c.Request.Context(), repository.Filter{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}

func (h *Handler) getWkt(c *gin.Context) {
	key, err := parser.ParseKey(c.Param("wkt_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	rec, err := h.query.GetRecord(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(rec.Wkt))
}

func (h *Handler) ingestWkts(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return
	}
	if strings.TrimSpace(string(body)) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body contains no WKT text"})
		return
	}
	report, err := h.ingest.IngestText(c.Request.Context(), string(body))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) listVersions(c *gin.Context) {
	versions, err := h.query.Versions(c.Request.Context(), "")
	if err != nil {
		respondError(c, err)
		return
	}
	if versions == nil {
		versions = []int{}
	}
	c.JSON(http.StatusOK, versions)
}

func versionParam(c *gin.Context) (int, bool) {
	v, err := strconv.Atoi(c.Param("version"))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: version", domain.ErrInvalidKeyComponent)})
		return 0, false
	}
	return v, true
}

func (h *Handler) listByVersion(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	page, ok := pageParams(c)
	if !ok {
		return
	}
	res, err := h.query.ListRecords(c.Request.Context(), repository.Filter{Version: version}, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) countByVersion(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	total, err := h.query.CountRecords(c.Request.Context(), repository.Filter{Version: version})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}

func (h *Handler) getWktByVersion(c *gin.Context) {
	version, ok := versionParam(c)
	if !ok {
		return
	}
	key, err := parser.ParseKey(c.Param("wkt_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if key.Version != version {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s does not belong to version %d", key, version)})
		return
	}
	rec, err := h.query.GetRecord(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(rec.Wkt))
}

func (h *Handler) listSolarBodies(c *gin.Context) {
	bodies, err := h.query.SolarBodies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if bodies == nil {
		bodies = []string{}
	}
	c.JSON(http.StatusOK, bodies)
}

func (h *Handler) countSolarBodies(c *gin.Context) {
	bodies, err := h.query.SolarBodies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, len(bodies))
}

func (h *Handler) listBySolarBody(c *gin.Context) {
	page, ok := pageParams(c)
	if !ok {
		return
	}
	f := repository.Filter{SolarBody: c.Param("solar_body")}
	res, err := h.query.ListRecords(c.Request.Context(), f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) countBySolarBody(c *gin.Context) {
	f := repository.Filter{SolarBody: c.Param("solar_body")}
	total, err := h.query.CountRecords(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}

func (h *Handler) getWktBySolarBody(c *gin.Context) {
	body := c.Param("solar_body")
	key, err := parser.ParseKey(c.Param("wkt_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	rec, err := h.query.GetRecord(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return
	}
	if !strings.EqualFold(rec.SolarBody, body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s does not describe %s", key, body)})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(rec.Wkt))
}

func (h *Handler) search(c *gin.Context) {
	page, ok := pageParams(c)
	if !ok {
		return
	}
	res, err := h.query.SearchRecords(c.Request.Context(), c.Query("search_term_kw"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) searchCount(c *gin.Context) {
	total, err := h.query.CountSearch(c.Request.Context(), c.Query("search_term_kw"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}

// lookup serves /crs/:namespace[/:version[/:code]]. A full key yields a
// single record, a partial key a page of matching summaries.
func (h *Handler) lookup(c *gin.Context) {
	pk, err := parser.ParsePathSegments(c.Param("namespace"), c.Param("version"), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	page, ok := pageParams(c)
	if !ok {
		return
	}
	rec, list, err := h.query.Lookup(c.Request.Context(), pk, page)
	if err != nil {
		respondError(c, err)
		return
	}
	if rec != nil {
		c.JSON(http.StatusOK, rec)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ogcVersions(c *gin.Context) {
	versions, err := h.query.Versions(c.Request.Context(), "IAU")
	if err != nil {
		c.XML(http.StatusServiceUnavailable, newExceptionReportXML("NoApplicableCode", err.Error()))
		return
	}
	urls := make([]string, 0, len(versions))
	for _, v := range versions {
		urls = append(urls, fmt.Sprintf("%s/%d", ogcCrsBaseURL, v))
	}
	c.XML(http.StatusOK, newIdentifiersXML(urls))
}

func (h *Handler) ogcIdentifiers(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version <= 0 {
		c.XML(http.StatusBadRequest, newExceptionReportXML("InvalidParameterValue", "version must be a positive integer"))
		return
	}
	records, err := h.query.AllRecords(c.Request.Context(), repository.Filter{Namespace: "IAU", Version: version})
	if err != nil {
		c.XML(http.StatusServiceUnavailable, newExceptionReportXML("NoApplicableCode", err.Error()))
		return
	}
	urls := make([]string, 0, len(records))
	for _, rec := range records {
		// Triaxial shapes have no OGC CRS definition.
		if strings.Contains(rec.Wkt, "TRIAXIAL") {
			continue
		}
		urls = append(urls, fmt.Sprintf("%s/%d/%d", ogcCrsBaseURL, rec.Version, rec.Code))
	}
	if len(urls) == 0 {
		c.XML(http.StatusNotFound, newExceptionReportXML("NoSuchDefinition", fmt.Sprintf("no CRS registered for IAU version %d", version)))
		return
	}
	c.XML(http.StatusOK, newIdentifiersXML(urls))
}

func (h *Handler) ogcGml(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version <= 0 {
		c.XML(http.StatusBadRequest, newExceptionReportXML("InvalidParameterValue", "version must be a positive integer"))
		return
	}
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code <= 0 {
		c.XML(http.StatusBadRequest, newExceptionReportXML("InvalidParameterValue", "code must be a positive integer"))
		return
	}
	key := domain.Key{Namespace: "IAU", Version: version, Code: code}
	data, err := h.gml.Get(key)
	if err != nil {
		c.XML(http.StatusNotFound, newExceptionReportXML("NoSuchDefinition", fmt.Sprintf("no GML definition for %s", key)))
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}
