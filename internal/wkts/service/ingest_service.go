package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
	"github.com/pdssp/planet-crs-registry/internal/wkts/parser"
	"github.com/pdssp/planet-crs-registry/internal/wkts/repository"
)

// Item statuses in a batch report.
const (
	StatusCreated = "created"
	StatusFailed  = "failed"
)

// ItemResult is the outcome of one WKT in a batch.
type ItemResult struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// BatchReport lists the per-item outcomes of an ingestion run. A failed
// item never aborts the batch.
type BatchReport struct {
	ReportID string       `json:"report_id"`
	Total    int          `json:"total"`
	Created  int          `json:"created"`
	Failed   int          `json:"failed"`
	Items    []ItemResult `json:"items"`
}

// IngestService validates raw WKT text and persists new CRS records.
type IngestService struct {
	store repository.RecordStore
}

func NewIngestService(store repository.RecordStore) *IngestService {
	return &IngestService{store: store}
}

// BuildRecord derives a CrsRecord from raw WKT text. The stored wkt keeps
// the source verbatim; identifier and descriptive fields are extracted
// from the normalized form.
func BuildRecord(wktText string, now time.Time) (*domain.CrsRecord, error) {
	normalized := parser.Normalize(wktText)

	key, err := parser.ExtractIdentifier(normalized)
	if err != nil {
		return nil, err
	}
	fields, err := parser.ExtractFields(normalized)
	if err != nil {
		return nil, err
	}

	return &domain.CrsRecord{
		ID:             key.String(),
		Namespace:      key.Namespace,
		Version:        key.Version,
		Code:           key.Code,
		SolarBody:      fields.SolarBody,
		DatumName:      fields.DatumName,
		EllipsoidName:  fields.EllipsoidName,
		ProjectionName: fields.ProjectionName,
		Wkt:            wktText,
		CreatedAt:      now.UTC(),
	}, nil
}

// IngestOne validates and persists a single WKT, returning its key.
func (s *IngestService) IngestOne(ctx context.Context, wktText string) (domain.Key, error) {
	rec, err := BuildRecord(wktText, time.Now())
	if err != nil {
		return domain.Key{}, err
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return domain.Key{}, err
	}
	return rec.Key(), nil
}

// IngestText splits a text batch on blank lines and ingests each WKT
// independently, in order. Items are never parallelized so the report
// stays aligned with the input. Cancellation stops between items and
// returns the partial report together with the context error.
func (s *IngestService) IngestText(ctx context.Context, text string) (*BatchReport, error) {
	blocks := parser.SplitCorpus(text)
	report := &BatchReport{
		ReportID: uuid.New().String(),
		Total:    len(blocks),
		Items:    make([]ItemResult, 0, len(blocks)),
	}

	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		key, err := s.IngestOne(ctx, block)
		if err != nil {
			// Mid-batch cancellation surfaces as a store error; stop
			// without inventing a per-item verdict.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			report.Failed++
			report.Items = append(report.Items, ItemResult{Index: i, Status: StatusFailed, Error: err.Error()})
			log.Printf("[warn] operation=ingest report=%s item=%d error=%v", report.ReportID, i, err)
			continue
		}

		report.Created++
		report.Items = append(report.Items, ItemResult{Index: i, ID: key.String(), Status: StatusCreated})
	}

	log.Printf("[info] operation=ingest report=%s total=%d created=%d failed=%d",
		report.ReportID, report.Total, report.Created, report.Failed)
	return report, nil
}
