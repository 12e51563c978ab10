package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

// HistoryArchiver implements domain.Archiver: it prunes price history older
// than the retention window and uploads the pruned rows to cold storage as
// JSONL, partitioned by prune date.
type HistoryArchiver struct {
	writer    domain.BlobWriter
	prices    domain.PriceStore
	retention time.Duration
	logger    *slog.Logger
}

// NewHistoryArchiver creates a HistoryArchiver.
func NewHistoryArchiver(writer domain.BlobWriter, prices domain.PriceStore, retention time.Duration, logger *slog.Logger) *HistoryArchiver {
	return &HistoryArchiver{
		writer:    writer,
		prices:    prices,
		retention: retention,
		logger:    logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveHistory uploads rows older than the retention window at
// archive/price_history/<timestamp>.jsonl and deletes them only after the
// upload succeeds. A failed upload leaves the rows in place for the next
// cycle; nothing is deleted before it has landed in cold storage.
func (a *HistoryArchiver) ArchiveHistory(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-a.retention)

	aged, err := a.prices.HistoryBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("s3blob: select aged history: %w", err)
	}
	if len(aged) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(aged)
	if err != nil {
		return 0, fmt.Errorf("s3blob: marshal history: %w", err)
	}

	key := fmt.Sprintf("archive/price_history/%s.jsonl", time.Now().UTC().Format("2006-01-02T15-04-05"))
	if err := a.writer.Write(ctx, key, buf); err != nil {
		return 0, fmt.Errorf("s3blob: upload history archive: %w", err)
	}

	if _, err := a.prices.DeleteHistoryBefore(ctx, cutoff); err != nil {
		return 0, fmt.Errorf("s3blob: prune archived history: %w", err)
	}

	a.logger.Info("history archived",
		slog.String("key", key),
		slog.Int("rows", len(aged)),
		slog.Time("cutoff", cutoff),
	)
	return len(aged), nil
}

// marshalJSONL serializes records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*HistoryArchiver)(nil)
