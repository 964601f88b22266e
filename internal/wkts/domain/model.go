package domain

import (
	"fmt"
	"time"
)

// NoProjection is the projection_name sentinel for geodetic (non-projected) CRSs.
const NoProjection = "No projection"

// Key is the composite identifier of a CRS record.
type Key struct {
	Namespace string `json:"namespace"`
	Version   int    `json:"version"`
	Code      int    `json:"code"`
}

// String renders the key in the registry's ID form, e.g. "IAU:2015:19900".
func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%d", k.Namespace, k.Version, k.Code)
}

// URN renders the canonical OGC URN, e.g. "urn:ogc:def:crs:IAU:2015:19900".
func (k Key) URN() string {
	return fmt.Sprintf("urn:ogc:def:crs:%s:%d:%d", k.Namespace, k.Version, k.Code)
}

// PartialKey is a key known at one of three granularities: namespace only,
// namespace+version, or fully qualified.
type PartialKey struct {
	Namespace string
	Version   *int
	Code      *int
}

// IsFull reports whether all three components are present.
func (p PartialKey) IsFull() bool {
	return p.Namespace != "" && p.Version != nil && p.Code != nil
}

// Full returns the fully-qualified key, if present.
func (p PartialKey) Full() (Key, bool) {
	if !p.IsFull() {
		return Key{}, false
	}
	return Key{Namespace: p.Namespace, Version: *p.Version, Code: *p.Code}, true
}

// CrsRecord is a stored CRS definition. The wkt field is the source of
// truth; the other columns are denormalized from it at ingestion time.
// Records are immutable after insert.
type CrsRecord struct {
	ID             string    `json:"id"`
	Namespace      string    `json:"namespace"`
	Version        int       `json:"version"`
	Code           int       `json:"code"`
	SolarBody      string    `json:"solar_body"`
	DatumName      string    `json:"datum_name"`
	EllipsoidName  string    `json:"ellipsoid_name"`
	ProjectionName string    `json:"projection_name"`
	Wkt            string    `json:"wkt"`
	CreatedAt      time.Time `json:"created_at"`
}

// Key returns the record's composite key.
func (r *CrsRecord) Key() Key {
	return Key{Namespace: r.Namespace, Version: r.Version, Code: r.Code}
}

// RecordSummary is the reduced projection used in listings; it omits the
// full wkt to keep list payloads small.
type RecordSummary struct {
	ID        string    `json:"id"`
	Namespace string    `json:"namespace"`
	Version   int       `json:"version"`
	Code      int       `json:"code"`
	SolarBody string    `json:"solar_body"`
	DatumName string    `json:"datum_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Summarize projects a record into its listing form.
func Summarize(r CrsRecord) RecordSummary {
	return RecordSummary{
		ID:        r.ID,
		Namespace: r.Namespace,
		Version:   r.Version,
		Code:      r.Code,
		SolarBody: r.SolarBody,
		DatumName: r.DatumName,
		CreatedAt: r.CreatedAt,
	}
}

// PageRequest is a 1-indexed page selector.
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset converts the page selector into a row offset.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}
