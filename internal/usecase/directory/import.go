package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/restodir/restodir/internal/domain"
	"github.com/restodir/restodir/internal/domain/progress"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
	"github.com/restodir/restodir/internal/logger"
	"github.com/restodir/restodir/internal/metrics"
)

// ImportReport summarizes one bulk import.
type ImportReport struct {
	ID         string
	Total      int
	Inserted   int
	Duplicates int
	Invalid    int
}

// BulkImport normalizes records and inserts them in one unordered batch.
// Duplicate ids and invalid records are skipped; any other store failure is
// returned. Progress runs from 0 to 1 while records are prepared and ends in
// Done whatever the outcome.
//
// BulkImport may run on its own goroutine while another goroutine polls Progress.
func (s *Service) BulkImport(ctx context.Context, records []domrest.RawRecord) (ImportReport, error) {
	repo, err := s.requireRepo()
	if err != nil {
		return ImportReport{}, err
	}

	report := ImportReport{ID: uuid.NewString(), Total: len(records)}
	log := s.logger.With(zap.String("import_id", report.ID))
	ctx = logger.ContextWithLogger(ctx, log)

	s.progress.Start()
	metrics.ImportProgress.Set(0)
	defer func() {
		s.progress.Finish()
		metrics.ImportProgress.Set(1)
	}()

	start := time.Now()
	docs := make([]domrest.RawRecord, 0, len(records))
	for i, rec := range records {
		norm, err := normalizeRecord(rec)
		if err != nil {
			report.Invalid++
			logger.FromContext(ctx).Warn("Skipping invalid record",
				zap.Int("index", i),
				zap.Error(err),
			)
		} else {
			docs = append(docs, norm)
		}
		f := float64(i+1) / float64(len(records))
		s.progress.Advance(f)
		metrics.ImportProgress.Set(f)
	}
	metrics.ImportRecordsTotal.WithLabelValues("invalid").Add(float64(report.Invalid))

	if len(docs) > 0 {
		res, err := repo.InsertMany(ctx, docs)
		report.Inserted = res.Inserted
		report.Duplicates = res.Duplicates
		metrics.ImportRecordsTotal.WithLabelValues("inserted").Add(float64(res.Inserted))
		metrics.ImportRecordsTotal.WithLabelValues("duplicate").Add(float64(res.Duplicates))

		switch {
		case errors.Is(err, domain.ErrDuplicateRecord):
			log.Warn("Skipped duplicate records", zap.Int("duplicates", res.Duplicates))
		case err != nil:
			return report, fmt.Errorf("bulk import: %w", err)
		}
	}

	log.Info("Import completed",
		zap.Int("total", report.Total),
		zap.Int("inserted", report.Inserted),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("invalid", report.Invalid),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

// Progress returns the latest import progress. Safe to call from any goroutine.
func (s *Service) Progress() progress.Snapshot {
	return s.progress.Load()
}

// ResetProgress returns progress to Idle before the next import.
func (s *Service) ResetProgress() {
	s.progress.Reset()
	metrics.ImportProgress.Set(0)
}
